package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRepo struct {
	Repository
	setStatusCalls int
	err            error
}

func (s *stubRepo) SetStatus(ctx context.Context, ids []uuid.UUID, status enums.OrderStatus) (int64, error) {
	s.setStatusCalls++
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(ids)), nil
}

func (s *stubRepo) CancelPending(ctx context.Context, userID, orderID uuid.UUID) (int64, error) {
	return 0, s.err
}

func (s *stubRepo) FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, gorm.ErrRecordNotFound
}

func TestBulkSetStatusRejectsNonStaffTargets(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, err := NewService(repo, nil, nil)
	require.NoError(t, err)

	for _, status := range []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusCancelled, "lost"} {
		_, err := svc.BulkSetStatus(context.Background(), []uuid.UUID{uuid.New()}, status)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "status %s", status)
	}
	_, err = svc.BulkSetStatus(context.Background(), nil, enums.OrderStatusShipped)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, repo.setStatusCalls)

	n, err := svc.BulkSetStatus(context.Background(), []uuid.UUID{uuid.New(), uuid.New()}, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestServiceMapsRepositoryErrors(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{}, nil, nil)
	require.NoError(t, err)
	_, err = svc.GetForUser(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	failing, err := NewService(&stubRepo{err: errors.New("connection reset")}, nil, nil)
	require.NoError(t, err)
	_, err = failing.GetForUser(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	_, err = failing.Cancel(context.Background(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	_, err = failing.BulkSetStatus(context.Background(), []uuid.UUID{uuid.New()}, enums.OrderStatusDelivered)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCancelStateMachine(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	user := testdb.User(t, conn, "owner@example.com")
	product := testdb.Product(t, conn, testdb.Category(t, conn, "shirts"), "tee", "10.00", 5)
	order := seedOrder(t, conn, user, product, enums.OrderStatusPending, time.Now())

	ok, err := svc.Cancel(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Cancel(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.False(t, ok, "cancelled order cannot be cancelled again")

	shipped := seedOrder(t, conn, user, product, enums.OrderStatusPending, time.Now())
	_, err = svc.BulkSetStatus(ctx, []uuid.UUID{shipped.ID}, enums.OrderStatusShipped)
	require.NoError(t, err)
	ok, err = svc.Cancel(ctx, user.ID, shipped.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	dto, err := svc.GetForUser(ctx, user.ID, shipped.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, dto.Status)
	assert.False(t, dto.CanCancel)

	ok, err = svc.Cancel(ctx, user.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderDTOUsesSnapshotPrice(t *testing.T) {
	t.Parallel()

	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn), nil, nil)
	require.NoError(t, err)
	ctx := context.Background()
	user := testdb.User(t, conn, "owner@example.com")
	product := testdb.Product(t, conn, testdb.Category(t, conn, "shirts"), "tee", "10.00", 5)
	order := seedOrder(t, conn, user, product, enums.OrderStatusPending, time.Now())

	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", "99.00").Error)

	list, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, "20.00", got.TotalAmount.String())
	require.Len(t, got.Items, 1)
	assert.Equal(t, "10.00", got.Items[0].Price.String())
	assert.Equal(t, "20.00", got.Items[0].LineTotal.String())
	assert.Equal(t, OrderNumber(order.ID), got.Number)
}

func TestOrderNumber(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	assert.Equal(t, "#3F2A9C1E", OrderNumber(id))
}
