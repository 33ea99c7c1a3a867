package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile extends a user with contact and shipping defaults.
type Profile struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Phone      string    `gorm:"column:phone;not null"`
	Address    string    `gorm:"column:address;not null"`
	City       string    `gorm:"column:city;not null"`
	PostalCode string    `gorm:"column:postal_code;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
