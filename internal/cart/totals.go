package cart

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/shopspring/decimal"
)

// LineTotal is the live product price times quantity. Items whose product is
// not loaded contribute zero.
func LineTotal(item models.CartItem) decimal.Decimal {
	if item.Product == nil {
		return decimal.Zero
	}
	return money.LineTotal(item.Product.Price, item.Quantity)
}

// TotalPrice sums the line totals of items. It is recomputed on every read.
func TotalPrice(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// ItemCount sums quantities, not distinct rows.
func ItemCount(items []models.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
