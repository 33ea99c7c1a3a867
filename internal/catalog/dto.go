package catalog

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// CategoryDTO is the transport shape for a category.
type CategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ProductCount int64     `json:"product_count"`
}

// ProductDTO is the transport shape for a product.
type ProductDTO struct {
	ID             uuid.UUID    `json:"id"`
	CategoryID     uuid.UUID    `json:"category_id"`
	CategoryName   string       `json:"category_name,omitempty"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Description    string       `json:"description"`
	Price          money.Amount `json:"price"`
	Stock          int          `json:"stock"`
	AvailableSizes []string     `json:"available_sizes"`
	Image          *string      `json:"image,omitempty"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// CreateCategoryInput is the payload for a new category. Slug defaults to the
// slugified name.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description"`
}

// ProductInput is the payload for creating a product. AvailableSizes is a
// comma separated list such as "S, M, L".
type ProductInput struct {
	CategoryID     uuid.UUID     `json:"category_id" validate:"required"`
	Name           string        `json:"name" validate:"required,max=200"`
	Slug           string        `json:"slug" validate:"omitempty,max=200"`
	Description    string        `json:"description"`
	Price          *money.Amount `json:"price" validate:"required"`
	Stock          *int          `json:"stock" validate:"required"`
	AvailableSizes string        `json:"available_sizes"`
	Image          *string       `json:"image"`
	IsActive       *bool         `json:"is_active"`
}

// ProductPatch carries optional product updates.
type ProductPatch struct {
	CategoryID     *uuid.UUID    `json:"category_id"`
	Name           *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Slug           *string       `json:"slug" validate:"omitempty,min=1,max=200"`
	Description    *string       `json:"description"`
	Price          *money.Amount `json:"price"`
	Stock          *int          `json:"stock"`
	AvailableSizes *string       `json:"available_sizes"`
	Image          *string       `json:"image"`
	IsActive       *bool         `json:"is_active"`
}

// ProductQuery filters product listings by category slug with cursor paging.
type ProductQuery struct {
	CategorySlug string
	Cursor       string
	Limit        int
}

// CategoryFromModel maps a category row.
func CategoryFromModel(c *models.Category, count int64) CategoryDTO {
	return CategoryDTO{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ProductCount: count,
	}
}

// ProductFromModel maps a product row.
func ProductFromModel(p *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		CategoryID:     p.CategoryID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          money.From(p.Price),
		Stock:          p.Stock,
		AvailableSizes: append([]string{}, p.AvailableSizes...),
		Image:          p.Image,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		dto.CategoryName = p.Category.Name
	}
	return dto
}
