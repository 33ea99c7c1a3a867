package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart and checkout services.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Resolve(ctx context.Context, identity Identity) (*models.Cart, error)
	FindExisting(ctx context.Context, identity Identity) (*models.Cart, error)
	LoadItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindItemByKey(ctx context.Context, cartID, productID uuid.UUID, size string) (*models.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	SetItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	MoveItem(ctx context.Context, itemID, cartID uuid.UUID) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	ListWithItems(ctx context.Context, limit int) ([]models.Cart, error)
}
