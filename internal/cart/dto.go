package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// AddItemInput is the body of POST /cart/add/{productId}.
type AddItemInput struct {
	Size     string `json:"size" validate:"max=10"`
	Quantity *int   `json:"quantity"`
}

// UpdateQuantityInput is the body of POST /cart/update/{itemId}.
type UpdateQuantityInput struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// ItemView is one rendered cart line.
type ItemView struct {
	ID          uuid.UUID    `json:"id"`
	ProductID   uuid.UUID    `json:"product_id"`
	ProductName string       `json:"product_name"`
	ProductSlug string       `json:"product_slug"`
	Image       *string      `json:"image,omitempty"`
	Size        string       `json:"size"`
	Quantity    int          `json:"quantity"`
	UnitPrice   money.Amount `json:"unit_price"`
	LineTotal   money.Amount `json:"line_total"`
}

// View is the full cart with derived totals.
type View struct {
	ID        uuid.UUID    `json:"id"`
	Items     []ItemView   `json:"items"`
	Total     money.Amount `json:"total"`
	ItemCount int          `json:"item_count"`
	IsEmpty   bool         `json:"is_empty"`
}

// AddResult reports the item touched by AddItem.
type AddResult struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
	Created  bool      `json:"created"`
}

// RemoveResult reports the cart after RemoveItem.
type RemoveResult struct {
	CartTotal money.Amount `json:"cart_total"`
	IsEmpty   bool         `json:"cart_empty"`
}

// UpdateResult reports the item and cart after UpdateQuantity.
type UpdateResult struct {
	ItemTotal money.Amount `json:"item_total"`
	CartTotal money.Amount `json:"cart_total"`
}

// Summary is the operator listing row for a cart.
type Summary struct {
	ID         uuid.UUID    `json:"id"`
	UserID     *uuid.UUID   `json:"user_id,omitempty"`
	Anonymous  bool         `json:"anonymous"`
	ItemsCount int          `json:"items_count"`
	Total      money.Amount `json:"total"`
	CreatedAt  time.Time    `json:"created_at"`
}

// NewView renders a cart and its loaded items.
func NewView(cart *models.Cart, items []models.CartItem) View {
	view := View{
		ID:        cart.ID,
		Items:     make([]ItemView, 0, len(items)),
		Total:     money.From(TotalPrice(items)),
		ItemCount: ItemCount(items),
		IsEmpty:   len(items) == 0,
	}
	for _, item := range items {
		row := ItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			LineTotal: money.From(LineTotal(item)),
		}
		if item.Product != nil {
			row.ProductName = item.Product.Name
			row.ProductSlug = item.Product.Slug
			row.Image = item.Product.Image
			row.UnitPrice = money.From(item.Product.Price)
		}
		view.Items = append(view.Items, row)
	}
	return view
}
