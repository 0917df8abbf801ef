package api

import (
	"bytes"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdenapp/bookden-server/internal/auth"
	"github.com/bookdenapp/bookden-server/internal/config"
	"github.com/bookdenapp/bookden-server/internal/dto"
	"github.com/bookdenapp/bookden-server/internal/service"
	"github.com/bookdenapp/bookden-server/internal/store"
)

// testEnvelope mirrors response.Envelope with typed data for test decoding.
type testEnvelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Success bool   `json:"success"`
}

// setupTestServer creates a test server with all dependencies. The login
// rate limit is effectively disabled; tests that exercise it build their
// own server with newTestServer.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServer(t, config.AuthConfig{
		LoginRatePerMinute: 60000,
		LoginBurst:         1000,
	})
}

func newTestServer(t *testing.T, authCfg config.AuthConfig) *Server {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookden-api-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "test.db")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	testKeyHex := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	enricher := dto.NewEnricher(s)
	guard := service.NewGuard(s)
	ratings := service.NewRatingService(s)
	catalog := config.CatalogConfig{DefaultPageSize: 5, MaxPageSize: 100}

	sessionService := service.NewSessionService(s, tokenService, logger)
	authService := service.NewAuthService(s, tokenService, sessionService, logger)
	bookService := service.NewBookService(s, ratings, guard, enricher, catalog, logger)
	reviewService := service.NewReviewService(s, guard, enricher, logger)
	profileService := service.NewProfileService(s, ratings)

	return NewServer(authService, bookService, reviewService, ratings, profileService, authCfg, logger)
}

// doRequest performs a request against the server, optionally with a JSON
// body and bearer token.
func doRequest(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// registerTestUser registers a user through the API and returns the auth
// response (tokens plus user).
func registerTestUser(t *testing.T, server *Server, email, firstName string) service.AuthResponse {
	t.Helper()

	w := doRequest(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":      email,
		"password":   "SecurePassword123!",
		"first_name": firstName,
		"last_name":  "Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var envelope testEnvelope[service.AuthResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope testEnvelope[map[string]string]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data["status"])
}

func TestServer_Routes(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "health check",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/api/v1/nonexistent",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "books list is public",
			method:         http.MethodGet,
			path:           "/api/v1/books",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "book create requires auth",
			method:         http.MethodPost,
			path:           "/api/v1/books",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "profile requires auth",
			method:         http.MethodGet,
			path:           "/api/v1/profile",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "users me requires auth",
			method:         http.MethodGet,
			path:           "/api/v1/users/me",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireAuth_RejectsBadTokens(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage token", token: "not-a-real-token"},
		{name: "empty bearer", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", http.NoBody)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()

			server.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
