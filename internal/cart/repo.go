package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Resolve returns the identity's cart, creating an empty one when absent.
// The row is locked FOR UPDATE so callers must run inside a transaction.
func (r *Repository) Resolve(ctx context.Context, identity Identity) (*models.Cart, error) {
	cart, err := r.findForUpdate(ctx, identity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.Cart{}
	if identity.IsUser() {
		id := *identity.UserID
		fresh.UserID = &id
	} else {
		key := identity.SessionKey
		fresh.SessionKey = &key
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.findForUpdate(ctx, identity)
}

// FindExisting returns the identity's cart without creating one.
func (r *Repository) FindExisting(ctx context.Context, identity Identity) (*models.Cart, error) {
	return r.findForUpdate(ctx, identity)
}

func (r *Repository) findForUpdate(ctx context.Context, identity Identity) (*models.Cart, error) {
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	switch {
	case identity.IsUser():
		query = query.Where("user_id = ?", *identity.UserID)
	case identity.SessionKey != "":
		query = query.Where("session_key = ?", identity.SessionKey)
	default:
		return nil, fmt.Errorf("cart identity is empty")
	}
	var cart models.Cart
	if err := query.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LoadItems returns the cart's items with their products, oldest first.
func (r *Repository) LoadItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// FindProduct loads a product by id regardless of its active flag.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindItemByKey returns the item for (cart, product, size).
func (r *Repository) FindItemByKey(ctx context.Context, cartID, productID uuid.UUID, size string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND size = ?", cartID, productID, size).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItem returns the item only when it belongs to cartID.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Omit("Product").Create(item).Error
}

// SetItemQuantity overwrites the quantity of an item.
func (r *Repository) SetItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// MoveItem re-parents an item into another cart.
func (r *Repository) MoveItem(ctx context.Context, itemID, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("cart_id", cartID).Error
}

// DeleteItem removes the item if it belongs to cartID and reports whether a row was removed.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

// ClearItems removes every item from the cart. The cart row remains.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

func (r *Repository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Cart{}, "id = ?", cartID).Error
}

// ListWithItems returns carts newest first with items and products loaded.
func (r *Repository) ListWithItems(ctx context.Context, limit int) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Items.Product").
		Order("created_at DESC").
		Limit(limit).
		Find(&carts).Error
	return carts, err
}
