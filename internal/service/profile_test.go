package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
)

func TestGetProfile(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	user := createTestUser(t, env.store, "reader@example.com", "Bookworm")
	other := createTestUser(t, env.store, "other@example.com", "Other")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedBook(t, env.store, "book-1", "Dune", "Frank Herbert", "Science Fiction", 1965, user.ID, base)
	seedBook(t, env.store, "book-2", "Earthsea", "Ursula K. Le Guin", "Fantasy", 1968, user.ID, base.Add(time.Hour))
	seedBook(t, env.store, "book-3", "Someone Else's", "Nobody", "", 2000, other.ID, base)

	seedReview(t, env.store, "review-1", "book-1", user.ID, 5, base)
	seedReview(t, env.store, "review-2", "book-3", user.ID, 3, base.Add(time.Hour))
	seedReview(t, env.store, "review-3", "book-1", other.ID, 2, base)

	profile, err := env.profiles.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Bookworm", profile.User.Name)

	// Only the user's own books, newest first, owner name short-circuited.
	require.Len(t, profile.Books, 2)
	assert.Equal(t, "book-2", profile.Books[0].ID)
	assert.Equal(t, "book-1", profile.Books[1].ID)
	assert.Equal(t, "Bookworm", profile.Books[0].AddedByName)

	// book-1 carries both reviews in its summary, not just the profile user's.
	assert.Equal(t, 2, profile.Books[1].ReviewCount)
	assert.InDelta(t, 3.5, profile.Books[1].AverageRating, 0.001)

	// Only the user's own reviews, newest first, with book info attached.
	require.Len(t, profile.Reviews, 2)
	assert.Equal(t, "review-2", profile.Reviews[0].ID)
	assert.Equal(t, "Someone Else's", profile.Reviews[0].BookTitle)
	assert.Equal(t, "review-1", profile.Reviews[1].ID)
	assert.Equal(t, "Dune", profile.Reviews[1].BookTitle)
	assert.Equal(t, "Frank Herbert", profile.Reviews[1].BookAuthor)
}

func TestGetProfile_Empty(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	user := createTestUser(t, env.store, "new@example.com", "")

	profile, err := env.profiles.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Books)
	assert.Empty(t, profile.Reviews)
	assert.Equal(t, "Test Reader", profile.User.Name) // Falls back to full name
}

func TestGetProfile_UnknownUser(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	_, err := env.profiles.GetProfile(context.Background(), "user-missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
