package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/wine_shop/internal/models"
	"github.com/Skotchmaster/wine_shop/internal/transport"
	"github.com/Skotchmaster/wine_shop/pkg/tokens"
)

func newAuthService(f *fixture) *AuthService {
	return &AuthService{
		Repo:          f.repo,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Events:        f.events,
	}
}

func registerRequest(email string) transport.RegisterRequest {
	return transport.RegisterRequest{
		Email:     email,
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerRequest("Ann@Example.COM"))
	require.NoError(t, err)
	assert.Equal(t, "Ann@example.com", u.Email)
	assert.False(t, u.IsStaff)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.Equal(t, []string{"user_registered"}, f.events.types())

	_, err = svc.Register(ctx, registerRequest("Ann@example.com"))
	requireFieldError(t, err, "email")

	short := registerRequest("b@example.com")
	short.Password = "short"
	_, err = svc.Register(ctx, short)
	requireFieldError(t, err, "password")

	numeric := registerRequest("c@example.com")
	numeric.Password = "1234567890"
	_, err = svc.Register(ctx, numeric)
	requireFieldError(t, err, "password")
}

func TestLogin_IssuesPairWithRole(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	u, err := svc.CreateSuperuser(ctx, registerRequest("admin@example.com"))
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(pair.Access, svc.JWTSecret)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff())
	assert.Equal(t, strconv.FormatUint(uint64(u.ID), 10), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(defaultAccessTTL), claims.ExpiresAt.Time, 2*time.Second)

	refresh, err := tokens.RefreshClaimsFromToken(pair.Refresh, svc.RefreshSecret)
	require.NoError(t, err)
	stored, err := f.repo.FindRefreshByJTI(ctx, refresh.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.UserID)
	assert.Equal(t, tokens.Sha256Hex(pair.Refresh), stored.Token)

	_, err = svc.Login(ctx, "admin@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesOnce(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("a@example.com"))
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "a@example.com", "s3cret-pass")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, next.Refresh)

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, next.Refresh)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	assert.EqualValues(t, 3, f.count(t, &models.RefreshToken{}))
}
