package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultListLimit = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the cart operations. Every call resolves the identity's cart
// first and locks it for the duration of the mutation.
type Service interface {
	ResolveCart(ctx context.Context, identity Identity) (*models.Cart, error)
	Get(ctx context.Context, identity Identity) (*View, error)
	Count(ctx context.Context, identity Identity) (int, error)
	AddItem(ctx context.Context, identity Identity, productID uuid.UUID, input AddItemInput) (*AddResult, error)
	RemoveItem(ctx context.Context, identity Identity, itemID uuid.UUID) (*RemoveResult, error)
	UpdateQuantity(ctx context.Context, identity Identity, itemID uuid.UUID, quantity int) (*UpdateResult, error)
	MergeSessionCart(ctx context.Context, sessionKey string, userID uuid.UUID) error
	List(ctx context.Context, limit int) ([]Summary, error)
}

type service struct {
	repo    CartRepository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo    CartRepository
	Tx      txRunner
	Logger  *logger.Logger
	Metrics *metrics.StoreMetrics
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) ResolveCart(ctx context.Context, identity Identity) (*models.Cart, error) {
	if !identity.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart identity required")
	}
	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		resolved, err := s.repo.WithTx(tx).Resolve(ctx, identity)
		if err != nil {
			return err
		}
		cart = resolved
		return nil
	})
	if err != nil {
		return nil, wrapDependency(err, "resolve cart")
	}
	return cart, nil
}

func (s *service) Get(ctx context.Context, identity Identity) (*View, error) {
	var view View
	err := s.withCart(ctx, identity, func(repo CartRepository, cart *models.Cart) error {
		items, err := repo.LoadItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		view = NewView(cart, items)
		return nil
	})
	if err != nil {
		return nil, wrapDependency(err, "load cart")
	}
	return &view, nil
}

func (s *service) Count(ctx context.Context, identity Identity) (int, error) {
	view, err := s.Get(ctx, identity)
	if err != nil {
		return 0, err
	}
	return view.ItemCount, nil
}

// AddItem increments the (product, size) line or creates it. Quantity defaults
// to 1 and is raised to 1 when lower. Stock and size are not checked.
func (s *service) AddItem(ctx context.Context, identity Identity, productID uuid.UUID, input AddItemInput) (*AddResult, error) {
	quantity := 1
	if input.Quantity != nil && *input.Quantity > 1 {
		quantity = *input.Quantity
	}
	size := strings.TrimSpace(input.Size)

	var result AddResult
	err := s.withCart(ctx, identity, func(repo CartRepository, cart *models.Cart) error {
		if _, err := repo.FindProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}

		existing, err := repo.FindItemByKey(ctx, cart.ID, productID, size)
		switch {
		case err == nil:
			existing.Quantity += quantity
			if err := repo.SetItemQuantity(ctx, existing.ID, existing.Quantity); err != nil {
				return err
			}
			result = AddResult{ItemID: existing.ID, Quantity: existing.Quantity}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{CartID: cart.ID, ProductID: productID, Size: size, Quantity: quantity}
			if err := repo.CreateItem(ctx, item); err != nil {
				return err
			}
			result = AddResult{ItemID: item.ID, Quantity: item.Quantity, Created: true}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, wrapDependency(err, "add cart item")
	}

	s.metrics.IncCartMutation("add")
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id": productID.String(),
			"item_id":    result.ItemID.String(),
			"quantity":   result.Quantity,
		})
		s.logg.Info(logCtx, "cart.item_added")
	}
	return &result, nil
}

func (s *service) RemoveItem(ctx context.Context, identity Identity, itemID uuid.UUID) (*RemoveResult, error) {
	var result RemoveResult
	err := s.withCart(ctx, identity, func(repo CartRepository, cart *models.Cart) error {
		removed, err := repo.DeleteItem(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		items, err := repo.LoadItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		result = RemoveResult{CartTotal: money.From(TotalPrice(items)), IsEmpty: len(items) == 0}
		return nil
	})
	if err != nil {
		return nil, wrapDependency(err, "remove cart item")
	}
	s.metrics.IncCartMutation("remove")
	return &result, nil
}

// UpdateQuantity overwrites the line quantity as given; zero and negative
// values are stored unchanged.
func (s *service) UpdateQuantity(ctx context.Context, identity Identity, itemID uuid.UUID, quantity int) (*UpdateResult, error) {
	var result UpdateResult
	err := s.withCart(ctx, identity, func(repo CartRepository, cart *models.Cart) error {
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return err
		}
		if err := repo.SetItemQuantity(ctx, item.ID, quantity); err != nil {
			return err
		}
		item.Quantity = quantity

		items, err := repo.LoadItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		result = UpdateResult{ItemTotal: money.From(LineTotal(*item)), CartTotal: money.From(TotalPrice(items))}
		return nil
	})
	if err != nil {
		return nil, wrapDependency(err, "update cart item")
	}
	s.metrics.IncCartMutation("update")
	return &result, nil
}

// MergeSessionCart folds the anonymous cart into the user's cart and deletes
// it. Matching (product, size) lines are summed.
func (s *service) MergeSessionCart(ctx context.Context, sessionKey string, userID uuid.UUID) error {
	session := ForSession(sessionKey)
	if !session.Valid() || userID == uuid.Nil {
		return nil
	}
	merged := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		anon, err := repo.FindExisting(ctx, session)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		target, err := repo.Resolve(ctx, ForUser(userID))
		if err != nil {
			return err
		}

		items, err := repo.LoadItems(ctx, anon.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			existing, err := repo.FindItemByKey(ctx, target.ID, item.ProductID, item.Size)
			switch {
			case err == nil:
				if err := repo.SetItemQuantity(ctx, existing.ID, existing.Quantity+item.Quantity); err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := repo.MoveItem(ctx, item.ID, target.ID); err != nil {
					return err
				}
			default:
				return err
			}
			merged++
		}
		if err := repo.ClearItems(ctx, anon.ID); err != nil {
			return err
		}
		return repo.DeleteCart(ctx, anon.ID)
	})
	if err != nil {
		return wrapDependency(err, "merge session cart")
	}
	if merged > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "merged_items", merged), "cart.session_merged")
	}
	return nil
}

func (s *service) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	carts, err := s.repo.ListWithItems(ctx, limit)
	if err != nil {
		return nil, wrapDependency(err, "list carts")
	}
	out := make([]Summary, 0, len(carts))
	for _, c := range carts {
		out = append(out, Summary{
			ID:         c.ID,
			UserID:     c.UserID,
			Anonymous:  c.UserID == nil,
			ItemsCount: ItemCount(c.Items),
			Total:      money.From(TotalPrice(c.Items)),
			CreatedAt:  c.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) withCart(ctx context.Context, identity Identity, fn func(repo CartRepository, cart *models.Cart) error) error {
	if !identity.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart identity required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.Resolve(ctx, identity)
		if err != nil {
			return err
		}
		return fn(repo, cart)
	})
}

func wrapDependency(err error, step string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, step)
}
