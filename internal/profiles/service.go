package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service reads and edits a user's profile, creating it on first access.
type Service interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*ProfileDTO, error)
}

type service struct {
	profiles *Repository
	users    *users.Repository
	tx       txRunner
}

// NewService builds the profile service.
func NewService(profiles *Repository, usersRepo *users.Repository, tx txRunner) (Service, error) {
	if profiles == nil || usersRepo == nil {
		return nil, fmt.Errorf("profile and user repositories required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{profiles: profiles, users: usersRepo, tx: tx}, nil
}

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	var out ProfileDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		profile, err := s.ensure(ctx, tx, userID)
		if err != nil {
			return err
		}
		out = FromModel(profile)
		return nil
	})
	if err != nil {
		return nil, mapError(err, "load profile")
	}
	return &out, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*ProfileDTO, error) {
	input = input.trimmed()
	var out ProfileDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		profileRepo := s.profiles.WithTx(tx)
		userRepo := s.users.WithTx(tx)

		if _, err := s.ensure(ctx, tx, userID); err != nil {
			return err
		}
		if err := userRepo.UpdateContact(ctx, userID, input.Email, input.FirstName, input.LastName); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return err
		}
		if err := profileRepo.UpdateFields(ctx, userID, input.Phone, input.Address, input.City, input.PostalCode); err != nil {
			return err
		}
		profile, err := profileRepo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out = FromModel(profile)
		return nil
	})
	if err != nil {
		return nil, mapError(err, "update profile")
	}
	return &out, nil
}

func (s *service) ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.Profile, error) {
	repo := s.profiles.WithTx(tx)
	profile, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.WithTx(tx).FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := repo.Ensure(ctx, &models.Profile{UserID: userID}); err != nil {
		return nil, err
	}
	return repo.FindByUserID(ctx, userID)
}

func mapError(err error, step string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, step)
}
