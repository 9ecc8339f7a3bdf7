package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/clothing_shop/internal/models"
)

func newTokenService(t *testing.T) *TokenService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)

	raw, err := svc.SignAccessToken(42, "admin")
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestAccessTokenWrongSecret(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)
	other := newTokenService(t)
	other.JWTSecret = []byte("different")

	raw, err := svc.SignAccessToken(42, "user")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(raw)
	assert.Error(t, err)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)

	raw, err := svc.SignAccessToken(42, "user")
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(raw)
	assert.Error(t, err)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)

	raw, err := svc.SignRefreshToken(7, "user")
	require.NoError(t, err)

	claims, err := svc.ValidateRefresh(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims["sub"])

	require.NoError(t, svc.RevokeRefresh(raw))

	_, err = svc.ValidateRefresh(raw)
	assert.Error(t, err)
}

func TestRefreshRotationRevokesOldToken(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)

	old, err := svc.SignRefreshToken(7, "user")
	require.NoError(t, err)

	access, refreshed, claims, err := svc.RotateToken(old)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refreshed)
	assert.EqualValues(t, 7, claims["sub"])

	// the old token is burned
	_, err = svc.ValidateRefresh(old)
	assert.Error(t, err)

	// the new one still works
	_, err = svc.ValidateRefresh(refreshed)
	require.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	t.Parallel()

	svc := newTokenService(t)
	other := newTokenService(t)
	other.RefreshSecret = svc.RefreshSecret

	// signed with the right secret but never persisted in this DB
	raw, err := other.SignRefreshToken(7, "user")
	require.NoError(t, err)

	_, err = svc.ValidateRefresh(raw)
	assert.Error(t, err)
}
