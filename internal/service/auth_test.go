package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookdenapp/bookden-server/internal/errors"
)

func TestRegister(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		FirstName: "Avid",
		LastName:  "Reader",
	})
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", resp.User.Email)
	assert.Equal(t, "Avid Reader", resp.User.Name)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// The issued token verifies against the freshly created user.
	claims, err := env.auth.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegister_Validation(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "long enough password", FirstName: "A", LastName: "B"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "long enough password", FirstName: "A", LastName: "B"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", FirstName: "A", LastName: "B"}},
		{"missing names", RegisterRequest{Email: "a@example.com", Password: "long enough password"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tc.req)
			require.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	req := RegisterRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		FirstName: "Avid",
		LastName:  "Reader",
	}

	_, err := env.auth.Register(context.Background(), req)
	require.NoError(t, err)

	req.Email = "READER@example.com" // Same address, different casing
	_, err = env.auth.Register(context.Background(), req)
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestLogin(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		FirstName: "Avid",
		LastName:  "Reader",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// Wrong password and unknown email produce the same error.
	_, err = env.auth.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "wrong password here",
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct horse battery staple",
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestRefreshTokens_Rotation(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	reg, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		FirstName: "Avid",
		LastName:  "Reader",
	})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshTokens(context.Background(), RefreshRequest{
		RefreshToken: reg.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// The refreshed response identifies the session's user.
	require.NotNil(t, refreshed.User)
	assert.Equal(t, reg.User.ID, refreshed.User.ID)
	assert.Equal(t, "reader@example.com", refreshed.User.Email)

	// The old refresh token was rotated out.
	_, err = env.auth.RefreshTokens(context.Background(), RefreshRequest{
		RefreshToken: reg.RefreshToken,
	})
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// The new one still works.
	_, err = env.auth.RefreshTokens(context.Background(), RefreshRequest{
		RefreshToken: refreshed.RefreshToken,
	})
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	reg, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		FirstName: "Avid",
		LastName:  "Reader",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(context.Background(), LogoutRequest{RefreshToken: reg.RefreshToken}))

	// The session is gone.
	_, err = env.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: reg.RefreshToken})
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// Logging out again is a no-op.
	require.NoError(t, env.auth.Logout(context.Background(), LogoutRequest{RefreshToken: reg.RefreshToken}))
}

func TestLogoutAll(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	reg, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:     "reader@example.com",
		Password:  "correct horse battery staple",
		FirstName: "Avid",
		LastName:  "Reader",
	})
	require.NoError(t, err)

	// A second device logs in.
	second, err := env.auth.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.LogoutAll(context.Background(), reg.User.ID))

	// Both sessions are gone.
	_, err = env.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: reg.RefreshToken})
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)
	_, err = env.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: second.RefreshToken})
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestVerifyAccessToken_Invalid(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	_, err := env.auth.VerifyAccessToken("v4.local.garbage")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestGetUser(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()

	user := createTestUser(t, env.store, "reader@example.com", "Bookworm")

	view, err := env.auth.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bookworm", view.Name)

	_, err = env.auth.GetUser(context.Background(), "user-missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
