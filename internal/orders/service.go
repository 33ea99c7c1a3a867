package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes order history and the status state machine.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (bool, error)
	BulkSetStatus(ctx context.Context, orderIDs []uuid.UUID, status enums.OrderStatus) (int64, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
}

// NewService builds the order service.
func NewService(repo Repository, logg *logger.Logger, m *metrics.StoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, logg: logg, metrics: m}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := FromModel(*order)
	return &dto, nil
}

// Cancel reports true only when a pending order owned by userID moved to
// cancelled. Missing, foreign and non-pending orders all report false.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (bool, error) {
	affected, err := s.repo.CancelPending(ctx, userID, orderID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if affected == 0 {
		return false, nil
	}
	s.metrics.AddStatusChanges(enums.OrderStatusCancelled.String(), affected)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", orderID.String()), "orders.cancelled")
	}
	return true, nil
}

// BulkSetStatus is the staff path: no transition checks beyond the target
// being processing, shipped or delivered.
func (s *service) BulkSetStatus(ctx context.Context, orderIDs []uuid.UUID, status enums.OrderStatus) (int64, error) {
	if !status.IsStaffSettable() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "status must be processing, shipped or delivered").
			WithDetails(map[string]any{"status": status.String()})
	}
	if len(orderIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order_ids required")
	}
	affected, err := s.repo.SetStatus(ctx, orderIDs, status)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set order status")
	}
	s.metrics.AddStatusChanges(status.String(), affected)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"status":  status.String(),
			"updated": affected,
		})
		s.logg.Info(logCtx, "admin.orders.status_set")
	}
	return affected, nil
}
