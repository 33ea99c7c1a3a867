package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEmptyCart is returned when checkout is attempted with no items. The HTTP
// layer sends the user back to the cart instead of rendering an error.
var ErrEmptyCart = errors.New("checkout: cart is empty")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderHook runs inside the checkout transaction after the order row exists
// and before its items are written. A non-nil error aborts the checkout.
type OrderHook func(ctx context.Context, tx *gorm.DB, order *models.Order) error

// Service executes checkout.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, contact Contact) (*models.Order, error)
}

type service struct {
	tx          txRunner
	cartRepo    cart.CartRepository
	ordersRepo  orders.Repository
	logg        *logger.Logger
	metrics     *metrics.StoreMetrics
	afterCreate OrderHook
	now         func() time.Time
}

// Option customises the checkout service.
type Option func(*service)

// WithOrderHook installs hook between order creation and item copy.
func WithOrderHook(hook OrderHook) Option {
	return func(s *service) { s.afterCreate = hook }
}

// WithLogger attaches a logger for checkout events.
func WithLogger(logg *logger.Logger) Option {
	return func(s *service) { s.logg = logg }
}

// WithMetrics attaches checkout metrics.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *service) { s.metrics = m }
}

// NewService builds the checkout service.
func NewService(tx txRunner, cartRepo cart.CartRepository, ordersRepo orders.Repository, opts ...Option) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	s := &service{
		tx:         tx,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateOrder converts the user's cart into a pending order. Resolving the
// cart, writing the order and its items, and clearing the cart happen in one
// transaction; any failure leaves the cart untouched and no order behind.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, contact Contact) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	contact = contact.normalized()
	started := s.now()

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		record, err := cartRepo.Resolve(ctx, cart.ForUser(userID))
		if err != nil {
			return err
		}
		items, err := cartRepo.LoadItems(ctx, record.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}
		if err := contact.validate(); err != nil {
			return err
		}

		order := &models.Order{
			UserID:      userID,
			Email:       contact.Email,
			FirstName:   contact.FirstName,
			LastName:    contact.LastName,
			Address:     contact.Address,
			City:        contact.City,
			PostalCode:  contact.PostalCode,
			Phone:       contact.Phone,
			TotalAmount: cart.TotalPrice(items),
			Status:      enums.OrderStatusPending,
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return err
		}
		if s.afterCreate != nil {
			if err := s.afterCreate(ctx, tx, order); err != nil {
				return err
			}
		}

		lines, err := snapshotItems(order.ID, items)
		if err != nil {
			return err
		}
		if err := ordersRepo.CreateItems(ctx, lines); err != nil {
			return err
		}
		if err := cartRepo.ClearItems(ctx, record.ID); err != nil {
			return err
		}
		order.Items = lines
		created = order
		return nil
	})

	elapsed := s.now().Sub(started)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.metrics.ObserveCheckout(elapsed, metrics.ReasonEmptyCart)
			return nil, ErrEmptyCart
		}
		s.metrics.ObserveCheckout(elapsed, metrics.ReasonError)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout failed")
	}

	s.metrics.ObserveCheckout(elapsed, "")
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     created.ID.String(),
			"total_amount": created.TotalAmount.StringFixed(2),
			"items":        len(created.Items),
		})
		s.logg.Info(logCtx, "checkout.order_created")
	}
	return created, nil
}

func snapshotItems(orderID uuid.UUID, items []models.CartItem) ([]models.OrderItem, error) {
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return nil, fmt.Errorf("cart item %s has no product loaded", item.ID)
		}
		productID := item.ProductID
		lines = append(lines, models.OrderItem{
			OrderID:     orderID,
			ProductID:   &productID,
			ProductName: item.Product.Name,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
			Size:        item.Size,
		})
	}
	return lines, nil
}
