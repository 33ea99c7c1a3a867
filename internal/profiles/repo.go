package profiles

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists profiles.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a profile repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUserID loads the profile together with its user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Ensure inserts an empty profile for userID unless one exists.
func (r *Repository) Ensure(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(profile).Error
}

// UpdateFields overwrites the contact columns.
func (r *Repository) UpdateFields(ctx context.Context, userID uuid.UUID, phone, address, city, postalCode string) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"phone":       phone,
			"address":     address,
			"city":        city,
			"postal_code": postalCode,
		}).Error
}
