package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/profiles"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AccountRegistrar creates a user and its profile in one transaction.
type AccountRegistrar struct {
	tx txRunner
}

// NewAccountRegistrar builds a registrar over the provided transaction runner.
func NewAccountRegistrar(tx txRunner) (*AccountRegistrar, error) {
	if tx == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &AccountRegistrar{tx: tx}, nil
}

// CreateAccount inserts the user and a profile carrying the phone number.
func (r *AccountRegistrar) CreateAccount(ctx context.Context, req RegisterRequest, passwordHash string) (*models.User, error) {
	var created *models.User
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		profileRepo := profiles.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, req.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        req.Email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		if err := profileRepo.Ensure(ctx, &models.Profile{UserID: user.ID, Phone: req.Phone}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
