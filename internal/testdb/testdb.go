// Package testdb opens throwaway SQLite databases with the full storefront
// schema for repository and service tests.
package testdb

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns an isolated in-memory database migrated from the models.
// A single connection is used so transactions never contend with themselves.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:sf_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return conn
}

// Category inserts a category with the given slug.
func Category(t testing.TB, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	c := &models.Category{Name: slug, Slug: slug}
	if err := db.WithContext(context.Background()).Create(c).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

// Product inserts an active product priced at price (a decimal string).
func Product(t testing.TB, db *gorm.DB, category *models.Category, slug, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID:     category.ID,
		Name:           slug,
		Slug:           slug,
		Price:          decimal.RequireFromString(price),
		Stock:          stock,
		AvailableSizes: dbtypes.StringList{"S", "M", "L"},
		IsActive:       true,
	}
	if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// User inserts an active customer.
func User(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
