package models

import (
	"time"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Price and stock are validated before every write.
type Product struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID     uuid.UUID          `gorm:"column:category_id;type:uuid;not null;index"`
	Category       *Category          `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Name           string             `gorm:"column:name;not null"`
	Slug           string             `gorm:"column:slug;not null;uniqueIndex"`
	Description    string             `gorm:"column:description;not null"`
	Price          decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Stock          int                `gorm:"column:stock;not null"`
	AvailableSizes dbtypes.StringList `gorm:"column:available_sizes;not null"`
	Image          *string            `gorm:"column:image"`
	IsActive       bool               `gorm:"column:is_active;not null;index"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
