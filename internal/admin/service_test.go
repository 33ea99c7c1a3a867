package admin

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stack struct {
	conn     *gorm.DB
	admin    Service
	carts    cart.Service
	checkout checkout.Service
	user     *models.User
	tee      *models.Product
	socks    *models.Product
}

func newStack(t *testing.T) stack {
	t.Helper()
	conn := testdb.Open(t)
	tx := db.Wrap(conn)

	cartRepo := cart.NewRepository(conn)
	carts, err := cart.NewService(cart.ServiceParams{Repo: cartRepo, Tx: tx})
	require.NoError(t, err)
	ordersRepo := orders.NewRepository(conn)
	orderSvc, err := orders.NewService(ordersRepo, nil, nil)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	checkoutSvc, err := checkout.NewService(tx, cartRepo, ordersRepo)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{Orders: ordersRepo, Status: orderSvc, Catalog: catalogSvc, Carts: carts})
	require.NoError(t, err)

	category := testdb.Category(t, conn, "apparel")
	return stack{
		conn:     conn,
		admin:    svc,
		carts:    carts,
		checkout: checkoutSvc,
		user:     testdb.User(t, conn, "ada@example.com"),
		tee:      testdb.Product(t, conn, category, "tee", "10.00", 3),
		socks:    testdb.Product(t, conn, category, "socks", "5.50", 0),
	}
}

func (s stack) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	ctx := context.Background()
	two := 2
	_, err := s.carts.AddItem(ctx, cart.ForUser(s.user.ID), s.tee.ID, cart.AddItemInput{Size: "M", Quantity: &two})
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, cart.ForUser(s.user.ID), s.socks.ID, cart.AddItemInput{})
	require.NoError(t, err)
	order, err := s.checkout.CreateOrder(ctx, s.user.ID, checkout.Contact{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
		Address: "1 Main St", City: "Springfield", PostalCode: "12345", Phone: "555-0100",
	})
	require.NoError(t, err)
	return order
}

func TestListAndGetOrdersWithDisplays(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	ctx := context.Background()
	order := s.placeOrder(t)

	page, err := s.admin.ListOrders(ctx, OrderQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	row := page.Items[0]
	assert.Equal(t, orders.OrderNumber(order.ID), row.Number)
	assert.Equal(t, "Ada Lovelace", row.Customer)
	assert.Equal(t, "2 items", row.ItemsCount)
	assert.Equal(t, "$25.50", row.TotalLabel)
	assert.Equal(t, "#ffeaa7", row.Badge.Color)

	require.NoError(t, s.conn.Delete(&models.Product{}, "id = ?", s.socks.ID).Error)
	detail, err := s.admin.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)
	labels := map[string]string{}
	for _, line := range detail.Lines {
		labels[line.ProductName] = line.Product.Label
	}
	assert.Equal(t, "No product", labels["socks"])
	assert.Equal(t, "tee", labels["tee"])

	_, err = s.admin.GetOrder(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = s.admin.ListOrders(ctx, OrderQuery{Status: "lost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSetOrderStatusIsUnconditional(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	ctx := context.Background()
	order := s.placeOrder(t)
	require.NoError(t, s.conn.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", enums.OrderStatusCancelled).Error)

	res, err := s.admin.SetOrderStatus(ctx, orders.BulkStatusInput{OrderIDs: []uuid.UUID{order.ID}, Status: "delivered"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Updated)

	detail, err := s.admin.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, detail.Status)

	_, err = s.admin.SetOrderStatus(ctx, orders.BulkStatusInput{OrderIDs: []uuid.UUID{order.ID}, Status: "cancelled"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = s.admin.SetOrderStatus(ctx, orders.BulkStatusInput{OrderIDs: []uuid.UUID{order.ID}, Status: "bogus"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestProductActions(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	ctx := context.Background()
	ids := []uuid.UUID{s.tee.ID, s.socks.ID}

	res, err := s.admin.ApplyProductAction(ctx, ProductActionInput{Action: "deactivate", ProductIDs: ids})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Affected)

	res, err = s.admin.ApplyProductAction(ctx, ProductActionInput{Action: "out_of_stock", ProductIDs: []uuid.UUID{s.tee.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Affected)

	res, err = s.admin.ApplyProductAction(ctx, ProductActionInput{Action: "duplicate", ProductIDs: []uuid.UUID{s.tee.ID}})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "tee (Copy)", res.Created[0].Name)
	assert.Equal(t, "tee-copy", res.Created[0].Slug)

	page, err := s.admin.ListProducts(ctx, catalog.ProductQuery{})
	require.NoError(t, err)
	byID := map[uuid.UUID]ProductRow{}
	for _, row := range page.Items {
		byID[row.ID] = row
	}
	assert.False(t, byID[s.tee.ID].IsActive)
	assert.Equal(t, enums.StockStatusOut, byID[s.tee.ID].StockStatus.Status)
	assert.Equal(t, "$10.00", byID[s.tee.ID].PriceLabel)

	_, err = s.admin.ApplyProductAction(ctx, ProductActionInput{Action: "explode", ProductIDs: ids})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCategoriesAndCarts(t *testing.T) {
	t.Parallel()

	s := newStack(t)
	ctx := context.Background()

	cats, err := s.admin.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "2 products", cats[0].ProductCountLabel)

	created, err := s.admin.CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Hats"})
	require.NoError(t, err)
	assert.Equal(t, "0 products", created.ProductCountLabel)

	one := 1
	_, err = s.carts.AddItem(ctx, cart.ForSession("anon"), s.tee.ID, cart.AddItemInput{Quantity: &one})
	require.NoError(t, err)
	rows, err := s.admin.ListCarts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Anonymous", rows[0].Owner)
	assert.Equal(t, "1 item", rows[0].ItemsCount)
	assert.Equal(t, "$10.00", rows[0].TotalLabel)
}
