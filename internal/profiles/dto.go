package profiles

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ProfileDTO merges the user's identity with their profile defaults.
type ProfileDTO struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
}

// UpdateInput is the body of POST /accounts/profile.
type UpdateInput struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	FirstName  string `json:"first_name" validate:"required,max=150"`
	LastName   string `json:"last_name" validate:"required,max=150"`
	Phone      string `json:"phone" validate:"max=20"`
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
}

func (in UpdateInput) trimmed() UpdateInput {
	return UpdateInput{
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
	}
}

// FromModel maps a profile with its user preloaded.
func FromModel(p *models.Profile) ProfileDTO {
	dto := ProfileDTO{
		UserID:     p.UserID,
		Phone:      p.Phone,
		Address:    p.Address,
		City:       p.City,
		PostalCode: p.PostalCode,
	}
	if p.User != nil {
		dto.Email = p.User.Email
		dto.FirstName = p.User.FirstName
		dto.LastName = p.User.LastName
	}
	return dto
}
