package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem copies price, quantity and size at checkout. ProductID is cleared
// when the product is deleted; ProductName keeps the label.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"column:product_id;type:uuid;index"`
	Product     *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Size        string          `gorm:"column:size;not null"`
}
