package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service backs the operator surface. It adds derived displays and bulk
// actions on top of the catalog, order and cart services.
type Service interface {
	ListOrders(ctx context.Context, query OrderQuery) (pagination.Page[OrderRow], error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	SetOrderStatus(ctx context.Context, input orders.BulkStatusInput) (*StatusResult, error)
	ListProducts(ctx context.Context, query catalog.ProductQuery) (pagination.Page[ProductRow], error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (*ProductRow, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, patch catalog.ProductPatch) (*ProductRow, error)
	ApplyProductAction(ctx context.Context, input ProductActionInput) (*ProductActionResult, error)
	ListCategories(ctx context.Context) ([]CategoryRow, error)
	CreateCategory(ctx context.Context, input catalog.CreateCategoryInput) (*CategoryRow, error)
	ListCarts(ctx context.Context, limit int) ([]CartRow, error)
}

type orderReader interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter orders.ListFilter) ([]models.Order, error)
}

type orderStatusSetter interface {
	BulkSetStatus(ctx context.Context, orderIDs []uuid.UUID, status enums.OrderStatus) (int64, error)
}

type cartLister interface {
	List(ctx context.Context, limit int) ([]cart.Summary, error)
}

// ServiceParams bundles the dependencies of the admin service.
type ServiceParams struct {
	Orders  orderReader
	Status  orderStatusSetter
	Catalog catalog.Service
	Carts   cartLister
	Logger  *logger.Logger
}

type service struct {
	orders  orderReader
	status  orderStatusSetter
	catalog catalog.Service
	carts   cartLister
	logg    *logger.Logger
}

// NewService builds the admin service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil || params.Status == nil {
		return nil, fmt.Errorf("order reader and status setter required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart lister required")
	}
	return &service{
		orders:  params.Orders,
		status:  params.Status,
		catalog: params.Catalog,
		carts:   params.Carts,
		logg:    params.Logger,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, query OrderQuery) (pagination.Page[OrderRow], error) {
	filter := orders.ListFilter{Limit: query.Limit}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return pagination.Page[OrderRow]{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		filter.Status = &status
	}
	cursor, err := pagination.ParseCursor(query.Cursor)
	if err != nil {
		return pagination.Page[OrderRow]{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, err := s.orders.List(ctx, filter)
	if err != nil {
		return pagination.Page[OrderRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := pagination.Trim(rows, query.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})

	out := pagination.Page[OrderRow]{Items: make([]OrderRow, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, order := range page.Items {
		out.Items = append(out.Items, orderRow(order))
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	detail := orderDetail(*order)
	return &detail, nil
}

func (s *service) SetOrderStatus(ctx context.Context, input orders.BulkStatusInput) (*StatusResult, error) {
	status, err := enums.ParseOrderStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	updated, err := s.status.BulkSetStatus(ctx, input.OrderIDs, status)
	if err != nil {
		return nil, err
	}
	return &StatusResult{Status: status, Updated: updated}, nil
}

func (s *service) ListProducts(ctx context.Context, query catalog.ProductQuery) (pagination.Page[ProductRow], error) {
	page, err := s.catalog.ListProducts(ctx, query)
	if err != nil {
		return pagination.Page[ProductRow]{}, err
	}
	out := pagination.Page[ProductRow]{Items: make([]ProductRow, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, p := range page.Items {
		out.Items = append(out.Items, productRow(p))
	}
	return out, nil
}

func (s *service) CreateProduct(ctx context.Context, input catalog.ProductInput) (*ProductRow, error) {
	p, err := s.catalog.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	row := productRow(*p)
	return &row, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, patch catalog.ProductPatch) (*ProductRow, error) {
	p, err := s.catalog.UpdateProduct(ctx, productID, patch)
	if err != nil {
		return nil, err
	}
	row := productRow(*p)
	return &row, nil
}

func (s *service) ApplyProductAction(ctx context.Context, input ProductActionInput) (*ProductActionResult, error) {
	action, err := enums.ParseProductAction(strings.TrimSpace(input.Action))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if len(input.ProductIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_ids required")
	}

	result := &ProductActionResult{Action: action}
	switch action {
	case enums.ProductActionActivate:
		result.Affected, err = s.catalog.SetActive(ctx, input.ProductIDs, true)
	case enums.ProductActionDeactivate:
		result.Affected, err = s.catalog.SetActive(ctx, input.ProductIDs, false)
	case enums.ProductActionOutOfStock:
		result.Affected, err = s.catalog.MarkOutOfStock(ctx, input.ProductIDs)
	case enums.ProductActionDuplicate:
		result.Created, err = s.catalog.Duplicate(ctx, input.ProductIDs)
		result.Affected = int64(len(result.Created))
	}
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"action":   action.String(),
			"affected": result.Affected,
		})
		s.logg.Info(logCtx, "admin.products.action_applied")
	}
	return result, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryRow, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryRow{CategoryDTO: c, ProductCountLabel: ProductCount(c.ProductCount)})
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input catalog.CreateCategoryInput) (*CategoryRow, error) {
	c, err := s.catalog.CreateCategory(ctx, input)
	if err != nil {
		return nil, err
	}
	return &CategoryRow{CategoryDTO: *c, ProductCountLabel: ProductCount(c.ProductCount)}, nil
}

func (s *service) ListCarts(ctx context.Context, limit int) ([]CartRow, error) {
	summaries, err := s.carts.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]CartRow, 0, len(summaries))
	for _, c := range summaries {
		owner := "Anonymous"
		if c.UserID != nil {
			owner = c.UserID.String()
		}
		out = append(out, CartRow{
			ID:         c.ID,
			Owner:      owner,
			ItemsCount: ItemsCount(c.ItemsCount),
			Total:      c.Total,
			TotalLabel: MoneyLabel(c.Total.Decimal()),
			CreatedAt:  c.CreatedAt,
		})
	}
	return out, nil
}
