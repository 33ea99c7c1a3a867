package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an immutable snapshot of a cart at checkout. Only Status changes afterwards.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	User        *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Email       string            `gorm:"column:email;not null"`
	FirstName   string            `gorm:"column:first_name;not null"`
	LastName    string            `gorm:"column:last_name;not null"`
	Address     string            `gorm:"column:address;not null"`
	City        string            `gorm:"column:city;not null"`
	PostalCode  string            `gorm:"column:postal_code;not null"`
	Phone       string            `gorm:"column:phone;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:varchar(20);not null;index"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
