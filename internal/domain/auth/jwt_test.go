package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	entID := id.New()

	ident := &appctx.Identity{
		UserID:         id.New(),
		Email:          "maria@example.com",
		Role:           role.Collaborator,
		EntrepreneurID: &entID,
	}

	token, expiresAt, err := svc.GenerateAccessToken(ident)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ident.UserID, got.UserID)
	assert.Equal(t, ident.Email, got.Email)
	assert.Equal(t, role.Collaborator, got.Role)
	require.NotNil(t, got.EntrepreneurID)
	assert.Equal(t, entID, *got.EntrepreneurID)
}

func TestJWTService_NoEntrepreneurClaim(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	ident := &appctx.Identity{
		UserID: id.New(),
		Email:  "owner@example.com",
		Role:   role.Entrepreneur,
	}

	token, _, err := svc.GenerateAccessToken(ident)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, got.EntrepreneurID)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret-a"))
	other := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := svc.GenerateAccessToken(&appctx.Identity{
		UserID: id.New(),
		Role:   role.Customer,
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(&appctx.Identity{
		UserID: id.New(),
		Role:   role.Entrepreneur,
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
