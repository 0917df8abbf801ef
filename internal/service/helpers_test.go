package service

import (
	"context"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookdenapp/bookden-server/internal/auth"
	"github.com/bookdenapp/bookden-server/internal/config"
	"github.com/bookdenapp/bookden-server/internal/domain"
	"github.com/bookdenapp/bookden-server/internal/dto"
	"github.com/bookdenapp/bookden-server/internal/id"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// testEnv bundles the services under test with their shared store.
type testEnv struct {
	store    *store.Store
	auth     *AuthService
	sessions *SessionService
	books    *BookService
	reviews  *ReviewService
	ratings  *RatingService
	profiles *ProfileService
}

func setupServiceTest(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookden-service-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	key := make([]byte, 32)
	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessions := NewSessionService(s, tokenService, logger)
	ratings := NewRatingService(s)
	guard := NewGuard(s)
	enricher := dto.NewEnricher(s)
	catalog := config.CatalogConfig{DefaultPageSize: 5, MaxPageSize: 100}

	env := &testEnv{
		store:    s,
		auth:     NewAuthService(s, tokenService, sessions, logger),
		sessions: sessions,
		books:    NewBookService(s, ratings, guard, enricher, catalog, logger),
		reviews:  NewReviewService(s, guard, enricher, logger),
		ratings:  ratings,
		profiles: NewProfileService(s, ratings),
	}

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}

// createTestUser stores a user directly, bypassing registration.
func createTestUser(t *testing.T, s *store.Store, email, displayName string) *domain.User {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	user := &domain.User{
		Email:       email,
		FirstName:   "Test",
		LastName:    "Reader",
		DisplayName: displayName,
	}
	user.ID = userID
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// addTestBook creates a catalog entry owned by the given user.
func addTestBook(t *testing.T, env *testEnv, ownerID string, req CreateBookRequest) *dto.Book {
	t.Helper()

	book, err := env.books.CreateBook(context.Background(), ownerID, req)
	require.NoError(t, err)
	return book
}
