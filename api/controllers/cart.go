package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type addItemResponse struct {
	Success  bool      `json:"success"`
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

type removeItemResponse struct {
	Success   bool         `json:"success"`
	CartTotal money.Amount `json:"cart_total"`
	CartEmpty bool         `json:"cart_empty"`
}

type updateItemResponse struct {
	Success   bool         `json:"success"`
	ItemTotal money.Amount `json:"item_total"`
	CartTotal money.Amount `json:"cart_total"`
}

type countResponse struct {
	Count int `json:"count"`
}

// CartView renders the resolved cart with live prices.
func CartView(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		identity, err := cartIdentity(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartCount returns the total quantity across cart lines.
func CartCount(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		identity, err := cartIdentity(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.Count(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, countResponse{Count: count})
	}
}

// CartAdd adds a product line or increments the matching one.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteMutationError(r.Context(), logg, w, err)
			return
		}

		var payload cart.AddItemInput
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity, err := cartIdentity(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), identity, productID, payload)
		if err != nil {
			responses.WriteMutationError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addItemResponse{Success: true, ItemID: result.ItemID, Quantity: result.Quantity})
	}
}

// CartRemove deletes a line owned by the caller's cart.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteMutationError(r.Context(), logg, w, err)
			return
		}
		identity, err := cartIdentity(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RemoveItem(r.Context(), identity, itemID)
		if err != nil {
			responses.WriteMutationError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, removeItemResponse{Success: true, CartTotal: result.CartTotal, CartEmpty: result.IsEmpty})
	}
}

// CartUpdate overwrites a line quantity.
func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteMutationError(r.Context(), logg, w, err)
			return
		}

		var payload cart.UpdateQuantityInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity, err := cartIdentity(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateQuantity(r.Context(), identity, itemID, *payload.Quantity)
		if err != nil {
			responses.WriteMutationError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updateItemResponse{Success: true, ItemTotal: result.ItemTotal, CartTotal: result.CartTotal})
	}
}
