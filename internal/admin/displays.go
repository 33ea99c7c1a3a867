package admin

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/shopspring/decimal"
)

const summaryLines = 3

// Badge is a coloured status label.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var badgeColors = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "#ffeaa7",
	enums.OrderStatusProcessing: "#74b9ff",
	enums.OrderStatusShipped:    "#a29bfe",
	enums.OrderStatusDelivered:  "#00b894",
	enums.OrderStatusCancelled:  "#fab1a0",
}

const defaultBadgeColor = "#ddd"

// StatusBadge returns the label and colour for an order status.
func StatusBadge(status enums.OrderStatus) Badge {
	color, ok := badgeColors[status]
	if !ok {
		color = defaultBadgeColor
	}
	return Badge{Label: status.Label(), Color: color}
}

// StockBadge classifies a stock level.
type StockBadge struct {
	Status enums.StockStatus `json:"status"`
	Label  string            `json:"label"`
}

// StockStatus classifies stock as out (0), low (1..5) or in stock.
func StockStatus(stock int) StockBadge {
	status := enums.StockStatusFor(stock)
	return StockBadge{Status: status, Label: status.Label()}
}

// ItemsSummary lists the first three lines as "• {qty}x {name}" and folds
// the rest into "• ... and N more items".
func ItemsSummary(items []models.OrderItem) string {
	lines := make([]string, 0, summaryLines+1)
	for i, item := range items {
		if i == summaryLines {
			break
		}
		lines = append(lines, fmt.Sprintf("• %dx %s", item.Quantity, itemName(item)))
	}
	if extra := len(items) - summaryLines; extra > 0 {
		lines = append(lines, fmt.Sprintf("• ... and %d more items", extra))
	}
	return strings.Join(lines, "\n")
}

// CustomerName prefers the contact name captured on the order.
func CustomerName(order models.Order) string {
	name := strings.TrimSpace(order.FirstName + " " + order.LastName)
	if name != "" {
		return name
	}
	if order.User != nil {
		return users.FullName(order.User)
	}
	return order.Email
}

// ItemsCount renders "1 item" or "N items".
func ItemsCount(n int) string {
	return plural(n, "item", "items")
}

// ProductCount renders "1 product" or "N products".
func ProductCount(n int64) string {
	return plural(int(n), "product", "products")
}

// ProductLink points an order line at its product, or reads "No product"
// once the product is gone.
type ProductLink struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// LinkFor builds the product link for an order line.
func LinkFor(item models.OrderItem) ProductLink {
	if item.ProductID == nil {
		return ProductLink{Label: "No product"}
	}
	return ProductLink{
		Label: itemName(item),
		URL:   "/admin/products/" + item.ProductID.String(),
	}
}

// MoneyLabel renders an amount for operator displays, e.g. "$25.50".
func MoneyLabel(d decimal.Decimal) string {
	return money.Label(d)
}

func itemName(item models.OrderItem) string {
	if item.Product != nil && item.Product.Name != "" {
		return item.Product.Name
	}
	return item.ProductName
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
