package service

import (
	"context"
	"testing"

	"github.com/azmi-amirullah/minimarket-pos/internal/config"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*stubUserRepo, AuthService) {
	t.Helper()
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return repo, NewAuthService(repo, cfg)
}

func seedUser(t *testing.T, repo *stubUserRepo, username, password, role string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginSuccess(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedUser(t, repo, "maria", "s3cret", "cashier", true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "cashier", resp.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedUser(t, repo, "maria", "s3cret", "cashier", true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginInactiveUser(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedUser(t, repo, "maria", "s3cret", "cashier", false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.Error(t, err)
}

func TestRefreshRoundTrip(t *testing.T) {
	repo, svc := newAuthFixture(t)
	seedUser(t, repo, "maria", "s3cret", "admin", true)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	_, svc := newAuthFixture(t)
	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

func TestMe(t *testing.T) {
	repo, svc := newAuthFixture(t)
	u := seedUser(t, repo, "maria", "s3cret", "cashier", true)

	resp, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, resp.Username)

	_, err = svc.Me(context.Background(), uuid.New())
	require.Error(t, err)
}
