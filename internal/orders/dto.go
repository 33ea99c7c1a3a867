package orders

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemDTO is a snapshotted order line.
type OrderItemDTO struct {
	ID          uuid.UUID    `json:"id"`
	ProductID   *uuid.UUID   `json:"product_id"`
	ProductName string       `json:"product_name"`
	ProductSlug *string      `json:"product_slug,omitempty"`
	Price       money.Amount `json:"price"`
	Quantity    int          `json:"quantity"`
	Size        string       `json:"size"`
	LineTotal   money.Amount `json:"line_total"`
}

// OrderDTO is the customer-facing order view.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	Number      string            `json:"number"`
	Status      enums.OrderStatus `json:"status"`
	StatusLabel string            `json:"status_label"`
	CanCancel   bool              `json:"can_cancel"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	PostalCode  string            `json:"postal_code"`
	Phone       string            `json:"phone"`
	TotalAmount money.Amount      `json:"total_amount"`
	Items       []OrderItemDTO    `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// BulkStatusInput is the body of POST /admin/orders/status.
type BulkStatusInput struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1,dive,required"`
	Status   string      `json:"status" validate:"required"`
}

// OrderNumber is the short operator-facing reference: "#" and the first
// eight hex digits of the id, upper-cased.
func OrderNumber(id uuid.UUID) string {
	return "#" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// ItemLineTotal uses the copied price, never the live product price.
func ItemLineTotal(item models.OrderItem) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// FromModel maps an order with its items preloaded.
func FromModel(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		Number:      OrderNumber(order.ID),
		Status:      order.Status,
		StatusLabel: order.Status.Label(),
		CanCancel:   order.Status.CanCancel(),
		Email:       order.Email,
		FirstName:   order.FirstName,
		LastName:    order.LastName,
		Address:     order.Address,
		City:        order.City,
		PostalCode:  order.PostalCode,
		Phone:       order.Phone,
		TotalAmount: money.From(order.TotalAmount),
		Items:       make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	for _, item := range order.Items {
		row := OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       money.From(item.Price),
			Quantity:    item.Quantity,
			Size:        item.Size,
			LineTotal:   money.From(ItemLineTotal(item)),
		}
		if item.Product != nil {
			slug := item.Product.Slug
			row.ProductSlug = &slug
		}
		dto.Items = append(dto.Items, row)
	}
	return dto
}
