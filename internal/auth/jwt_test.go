package auth

import (
	"testing"
	"time"

	"zibana-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(secret string) *JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.Issuer = "zibana-admin"
	return NewJWTManager(cfg)
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager("test-secret")

	token, err := m.GenerateToken("admin-7", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-7", claims.AdminID)
	assert.Equal(t, "zibana-admin", claims.Issuer)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager("test-secret")

	token, err := m.GenerateToken("admin-7", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := testManager("secret-a").GenerateToken("admin-7", time.Hour)
	require.NoError(t, err)

	_, err = testManager("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenWithoutAdminIdentityRejected(t *testing.T) {
	m := testManager("test-secret")

	token, err := m.GenerateToken("", time.Hour)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
