package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-do-not-use",
		Expiry:        expiry,
		RefreshExpiry: 2 * expiry,
		Issuer:        "gradtrack-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := testManager(time.Hour)

	token, jti, err := manager.GenerateAccessToken(42, "user@example.com", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "gradtrack-test", claims.Issuer)
}

func TestRefreshTokenType(t *testing.T) {
	manager := testManager(time.Hour)

	token, _, err := manager.GenerateRefreshToken(7, "user@example.com", 0)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := testManager(-time.Minute)

	token, _, err := manager.GenerateAccessToken(1, "user@example.com", 0)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	manager := testManager(time.Hour)
	otherManager := NewJWTManager(JWTConfig{
		Secret: "a-different-secret",
		Expiry: time.Hour,
		Issuer: "gradtrack-test",
	})

	token, _, err := manager.GenerateAccessToken(1, "user@example.com", 0)
	require.NoError(t, err)

	_, err = otherManager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	manager := testManager(time.Hour)

	_, err := manager.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.Error(t, VerifyPassword(hash, "wrong password"))
}

func TestPasswordMinimumLength(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	assert.False(t, IsPasswordValid("1234567"))
	assert.True(t, IsPasswordValid("12345678"))
}
