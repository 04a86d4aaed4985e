package utils

import (
	"testing"
	"time"

	"homeservice/config"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = secret
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })
}

func TestGenerateAndParseToken(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken("user-1", "provider", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "provider", claims.Role)
}

func TestParseToken_Expired(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken("user-1", "customer", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	withSecret(t, "one")
	token, err := GenerateToken("user-1", "customer", time.Hour)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "two"
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	withSecret(t, "test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:           "admin",
		StandardClaims: jwt.StandardClaims{Subject: "x", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	withSecret(t, "")
	_, err := GenerateToken("user-1", "customer", time.Hour)
	assert.Error(t, err)
}
