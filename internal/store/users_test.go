package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/store"
)

func newTestUser(id, email string) *domain.User {
	user := &domain.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "Reader",
	}
	user.ID = id
	user.InitTimestamps()
	return user
}

func TestCreateUser_And_GetByEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := s.CreateUser(ctx, newTestUser("user-1", "reader@example.com"))
	require.NoError(t, err)

	got, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "reader@example.com", got.Email)

	// Email lookup is case-insensitive.
	got, err = s.GetUserByEmail(ctx, "Reader@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "user-1", got.ID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := s.CreateUser(ctx, newTestUser("user-1", "reader@example.com"))
	require.NoError(t, err)

	// Different casing, same address.
	err = s.CreateUser(ctx, newTestUser("user-2", "READER@example.com"))
	require.ErrorIs(t, err, store.ErrEmailExists)
}

func TestGetUser_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetUser(context.Background(), "user-missing")
	require.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := newTestUser("user-1", "reader@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	user.DisplayName = "Bookworm"
	require.NoError(t, s.UpdateUser(ctx, user))

	got, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "Bookworm", got.DisplayName)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("user-1", "one@example.com")))
	two := newTestUser("user-2", "two@example.com")
	require.NoError(t, s.CreateUser(ctx, two))

	two.Email = "one@example.com"
	err := s.UpdateUser(ctx, two)
	require.ErrorIs(t, err, store.ErrEmailExists)
}
