package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	msgPriceNotPositive = "Price must be greater than 0"
	msgStockNegative    = "Stock cannot be negative"

	copyNameSuffix  = " (Copy)"
	copySlugSuffix  = "-copy"
	maxSlugAttempts = 50
)

// Service exposes catalog reads and validated writes.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	ListActiveProducts(ctx context.Context, query ProductQuery) (pagination.Page[ProductDTO], error)
	ListProducts(ctx context.Context, query ProductQuery) (pagination.Page[ProductDTO], error)
	GetActiveProduct(ctx context.Context, slug string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*ProductDTO, error)
	SetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error)
	MarkOutOfStock(ctx context.Context, ids []uuid.UUID) (int64, error)
	Duplicate(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error)
}

type catalogRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]CategoryWithCount, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	SlugTaken(ctx context.Context, slug string, except *uuid.UUID) (bool, error)
	UpdateProductsColumn(ctx context.Context, ids []uuid.UUID, column string, value any) (int64, error)
}

type service struct {
	repo catalogRepository
}

// NewService builds a catalog service.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, CategoryFromModel(&rows[i].Category, rows[i].ProductCount))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	categorySlug := slug.Make(firstNonEmpty(input.Slug, name))
	if categorySlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	category := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	dto := CategoryFromModel(category, 0)
	return &dto, nil
}

func (s *service) ListActiveProducts(ctx context.Context, query ProductQuery) (pagination.Page[ProductDTO], error) {
	return s.listProducts(ctx, query, true)
}

func (s *service) ListProducts(ctx context.Context, query ProductQuery) (pagination.Page[ProductDTO], error) {
	return s.listProducts(ctx, query, false)
}

func (s *service) listProducts(ctx context.Context, query ProductQuery, activeOnly bool) (pagination.Page[ProductDTO], error) {
	cursor, err := pagination.ParseCursor(query.Cursor)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	filter := ProductFilter{ActiveOnly: activeOnly, Cursor: cursor, Limit: query.Limit}
	if categorySlug := strings.TrimSpace(query.CategorySlug); categorySlug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, categorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pagination.Page[ProductDTO]{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		filter.CategoryID = &category.ID
	}

	rows, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	page := pagination.Trim(rows, query.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})

	out := pagination.Page[ProductDTO]{Items: make([]ProductDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		out.Items = append(out.Items, ProductFromModel(&page.Items[i]))
	}
	return out, nil
}

func (s *service) GetActiveProduct(ctx context.Context, productSlug string) (*ProductDTO, error) {
	product, err := s.repo.FindProductBySlug(ctx, productSlug, true)
	if err != nil {
		return nil, mapProductErr(err, "load product")
	}
	dto := ProductFromModel(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if input.Price == nil || input.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price and stock are required")
	}
	product := &models.Product{
		CategoryID:     input.CategoryID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Price:          input.Price.Decimal(),
		Stock:          *input.Stock,
		AvailableSizes: dbtypes.ParseStringList(input.AvailableSizes),
		Image:          input.Image,
		IsActive:       true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	productSlug, err := s.slugFor(ctx, input.Slug, product.Name, nil)
	if err != nil {
		return nil, err
	}
	product.Slug = productSlug

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.reload(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err, "load product")
	}

	if patch.CategoryID != nil && *patch.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *patch.CategoryID
		product.Category = nil
	}
	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = patch.Price.Decimal()
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.AvailableSizes != nil {
		product.AvailableSizes = dbtypes.ParseStringList(*patch.AvailableSizes)
	}
	if patch.Image != nil {
		if strings.TrimSpace(*patch.Image) == "" {
			product.Image = nil
		} else {
			product.Image = patch.Image
		}
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if patch.Slug != nil {
		productSlug, err := s.slugFor(ctx, *patch.Slug, product.Name, &product.ID)
		if err != nil {
			return nil, err
		}
		product.Slug = productSlug
	}

	if err := s.repo.SaveProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.reload(ctx, product.ID)
}

func (s *service) SetActive(ctx context.Context, ids []uuid.UUID, active bool) (int64, error) {
	n, err := s.repo.UpdateProductsColumn(ctx, ids, "is_active", active)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update products")
	}
	return n, nil
}

func (s *service) MarkOutOfStock(ctx context.Context, ids []uuid.UUID) (int64, error) {
	n, err := s.repo.UpdateProductsColumn(ctx, ids, "stock", 0)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update products")
	}
	return n, nil
}

// Duplicate copies each product as "{name} (Copy)" with slug "{slug}-copy".
// Unknown ids are skipped.
func (s *service) Duplicate(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error) {
	sources, err := s.repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	out := make([]ProductDTO, 0, len(sources))
	for i := range sources {
		src := sources[i]
		copySlug, err := s.uniqueSlug(ctx, src.Slug+copySlugSuffix, nil)
		if err != nil {
			return nil, err
		}
		dup := &models.Product{
			CategoryID:     src.CategoryID,
			Name:           src.Name + copyNameSuffix,
			Slug:           copySlug,
			Description:    src.Description,
			Price:          src.Price,
			Stock:          src.Stock,
			AvailableSizes: append(dbtypes.StringList{}, src.AvailableSizes...),
			Image:          src.Image,
			IsActive:       src.IsActive,
		}
		if err := s.repo.CreateProduct(ctx, dup); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "duplicate product")
		}
		out = append(out, ProductFromModel(dup))
	}
	return out, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err, "reload product")
	}
	dto := ProductFromModel(product)
	return &dto, nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist").
				WithDetails(map[string]string{"category_id": "does not exist"})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}

// slugFor slugifies an explicit slug and rejects it when taken; a derived slug
// gets a numeric suffix instead.
func (s *service) slugFor(ctx context.Context, explicit, name string, except *uuid.UUID) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		candidate := slug.Make(explicit)
		if candidate == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "slug is invalid")
		}
		taken, err := s.repo.SlugTaken(ctx, candidate, except)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if taken {
			return "", pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return candidate, nil
	}
	base := slug.Make(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	return s.uniqueSlug(ctx, base, except)
}

func (s *service) uniqueSlug(ctx context.Context, base string, except *uuid.UUID) (string, error) {
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.repo.SlugTaken(ctx, candidate, except)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique slug")
}

// validateProduct enforces the write-time product invariants.
func validateProduct(p *models.Product) error {
	details := map[string]string{}
	if p.Name == "" {
		details["name"] = "is required"
	}
	if p.Price.LessThanOrEqual(decimal.Zero) {
		details["price"] = msgPriceNotPositive
	}
	if p.Stock < 0 {
		details["stock"] = msgStockNegative
	}
	if len(details) == 0 {
		return nil
	}
	msg := "validation failed"
	if m, ok := details["price"]; ok {
		msg = m
	} else if m, ok := details["stock"]; ok {
		msg = m
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

func mapProductErr(err error, step string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, step)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
