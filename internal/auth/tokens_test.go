package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humbas_back_end/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	}
}

func TestGenerateTokenPairRoundTrip(t *testing.T) {
	tm := NewTokenManager(testConfig())

	access, refresh, err := tm.GenerateTokenPair("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	userID, err := tm.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	userID, err = tm.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokensAreDistinctPerIssue(t *testing.T) {
	tm := NewTokenManager(testConfig())

	first, err := tm.GenerateAccessToken("user-123")
	require.NoError(t, err)
	second, err := tm.GenerateAccessToken("user-123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestAccessSecretDoesNotVerifyRefreshToken(t *testing.T) {
	tm := NewTokenManager(testConfig())

	refresh, err := tm.GenerateRefreshToken("user-123")
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenIsDistinguished(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Minute
	expiredTM := NewTokenManager(cfg)

	token, err := expiredTM.GenerateAccessToken("user-123")
	require.NoError(t, err)

	_, err = expiredTM.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	tm := NewTokenManager(testConfig())

	token, err := tm.GenerateAccessToken("user-123")
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(token + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.VerifyAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}
