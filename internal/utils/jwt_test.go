package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAccessTokenClaims(t *testing.T) {
	tok, err := NewAccessToken("test-secret", "64f1a2b3c4d5e6f708192a3b", "ADMIN", 30)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.ID)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "64f1a2b3c4d5e6f708192a3b", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.Equal(t, tok.ID, claims["jti"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp.Time, time.Minute)
	assert.WithinDuration(t, tok.Exp, exp.Time, time.Second)
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("test-secret", "user-id", "USER", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(*jwt.Token) (any, error) {
		return []byte("other-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "Secret123"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordClampsOutOfRangeCost(t *testing.T) {
	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		hash, err := HashPassword("secret123", cost)
		require.NoError(t, err, "cost %d", cost)
		assert.True(t, VerifyPassword(hash, "secret123"))
		assert.Equal(t, bcrypt.DefaultCost, hashCost(t, hash))
	}
}

// hashCost reads the cost factor back out of a bcrypt hash.
func hashCost(t *testing.T, hash string) int {
	t.Helper()
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	return cost
}
