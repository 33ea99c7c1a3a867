package admin

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// OrderRow is one line of the operator order list.
type OrderRow struct {
	ID           uuid.UUID         `json:"id"`
	Number       string            `json:"number"`
	Customer     string            `json:"customer"`
	Email        string            `json:"email"`
	Status       enums.OrderStatus `json:"status"`
	Badge        Badge             `json:"badge"`
	ItemsCount   string            `json:"items_count"`
	ItemsSummary string            `json:"items_summary"`
	TotalAmount  money.Amount      `json:"total_amount"`
	TotalLabel   string            `json:"total_label"`
	CreatedAt    time.Time         `json:"created_at"`
}

// OrderLine is an order item with its product link.
type OrderLine struct {
	ID          uuid.UUID    `json:"id"`
	Product     ProductLink  `json:"product"`
	ProductName string       `json:"product_name"`
	Size        string       `json:"size"`
	Quantity    int          `json:"quantity"`
	Price       money.Amount `json:"price"`
	LineTotal   money.Amount `json:"line_total"`
}

// OrderDetail is the operator view of one order.
type OrderDetail struct {
	OrderRow
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	City       string      `json:"city"`
	PostalCode string      `json:"postal_code"`
	UserID     uuid.UUID   `json:"user_id"`
	Lines      []OrderLine `json:"lines"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderQuery filters the operator order list.
type OrderQuery struct {
	Status string
	Cursor string
	Limit  int
}

// ProductRow adds stock classification and a money label to a product.
type ProductRow struct {
	catalog.ProductDTO
	StockStatus StockBadge `json:"stock_status"`
	PriceLabel  string     `json:"price_label"`
}

// CategoryRow adds the rendered product count.
type CategoryRow struct {
	catalog.CategoryDTO
	ProductCountLabel string `json:"product_count_label"`
}

// CartRow is one line of the operator cart list.
type CartRow struct {
	ID         uuid.UUID    `json:"id"`
	Owner      string       `json:"owner"`
	ItemsCount string       `json:"items_count"`
	Total      money.Amount `json:"total"`
	TotalLabel string       `json:"total_label"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ProductActionInput is the body of POST /admin/products/actions.
type ProductActionInput struct {
	Action     string      `json:"action" validate:"required"`
	ProductIDs []uuid.UUID `json:"product_ids" validate:"required,min=1,dive,required"`
}

// ProductActionResult reports a bulk product action.
type ProductActionResult struct {
	Action   enums.ProductAction  `json:"action"`
	Affected int64                `json:"affected"`
	Created  []catalog.ProductDTO `json:"created,omitempty"`
}

// StatusResult reports a bulk order status change.
type StatusResult struct {
	Status  enums.OrderStatus `json:"status"`
	Updated int64             `json:"updated"`
}

func orderRow(order models.Order) OrderRow {
	return OrderRow{
		ID:           order.ID,
		Number:       orders.OrderNumber(order.ID),
		Customer:     CustomerName(order),
		Email:        order.Email,
		Status:       order.Status,
		Badge:        StatusBadge(order.Status),
		ItemsCount:   ItemsCount(len(order.Items)),
		ItemsSummary: ItemsSummary(order.Items),
		TotalAmount:  money.From(order.TotalAmount),
		TotalLabel:   MoneyLabel(order.TotalAmount),
		CreatedAt:    order.CreatedAt,
	}
}

func orderDetail(order models.Order) OrderDetail {
	detail := OrderDetail{
		OrderRow:   orderRow(order),
		FirstName:  order.FirstName,
		LastName:   order.LastName,
		Phone:      order.Phone,
		Address:    order.Address,
		City:       order.City,
		PostalCode: order.PostalCode,
		UserID:     order.UserID,
		Lines:      make([]OrderLine, 0, len(order.Items)),
		UpdatedAt:  order.UpdatedAt,
	}
	for _, item := range order.Items {
		detail.Lines = append(detail.Lines, OrderLine{
			ID:          item.ID,
			Product:     LinkFor(item),
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
			Price:       money.From(item.Price),
			LineTotal:   money.From(orders.ItemLineTotal(item)),
		})
	}
	return detail
}

func productRow(p catalog.ProductDTO) ProductRow {
	return ProductRow{
		ProductDTO:  p,
		StockStatus: StockStatus(p.Stock),
		PriceLabel:  MoneyLabel(p.Price.Decimal()),
	}
}
