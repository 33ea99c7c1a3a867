package profiles

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	svc, err := NewService(NewRepository(conn), users.NewRepository(conn), db.Wrap(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, conn := newService(t)
	ctx := context.Background()
	user := testdb.User(t, conn, "ada@example.com")

	first, err := svc.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Empty(t, first.Phone)

	_, err = svc.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)

	var n int64
	require.NoError(t, conn.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGetOrCreateUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.GetOrCreate(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateWritesUserAndProfile(t *testing.T) {
	t.Parallel()

	svc, conn := newService(t)
	ctx := context.Background()
	user := testdb.User(t, conn, "ada@example.com")

	got, err := svc.Update(ctx, user.ID, UpdateInput{
		Email:      " ADA2@example.com",
		FirstName:  "Ada",
		LastName:   "King",
		Phone:      "555-0100",
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada2@example.com", got.Email)
	assert.Equal(t, "King", got.LastName)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "Springfield", got.City)
}

func TestUpdateEmailConflict(t *testing.T) {
	t.Parallel()

	svc, conn := newService(t)
	ctx := context.Background()
	user := testdb.User(t, conn, "ada@example.com")
	testdb.User(t, conn, "taken@example.com")

	_, err := svc.Update(ctx, user.ID, UpdateInput{Email: "taken@example.com", FirstName: "Ada", LastName: "L"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}
