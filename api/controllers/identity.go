package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// currentUserID returns the authenticated user or an Unauthorized error.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// cartIdentity picks the user when authenticated and otherwise the anonymous
// session, minting the session cookie if needed.
func cartIdentity(w http.ResponseWriter, r *http.Request) (cart.Identity, error) {
	if middleware.UserIDFromContext(r.Context()) != "" {
		id, err := currentUserID(r)
		if err != nil {
			return cart.Identity{}, err
		}
		return cart.ForUser(id), nil
	}
	key, err := middleware.EnsureSessionKey(w, r)
	if err != nil {
		return cart.Identity{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "session unavailable")
	}
	return cart.ForSession(key), nil
}
