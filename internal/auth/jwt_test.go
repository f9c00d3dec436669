package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signed(t, jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(exp)})

	got, ok := ExpiresAt(token)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
	assert.Equal(t, "user-1", Subject(token))

	_, ok = ExpiresAt("opaque-token")
	assert.False(t, ok)

	_, ok = ExpiresAt(signed(t, jwt.RegisteredClaims{Subject: "no-exp"}))
	assert.False(t, ok)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	live := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))})
	dead := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})

	assert.False(t, Expired(live, now, 0))
	assert.True(t, Expired(live, now, 2*time.Minute), "leeway should pull expiry forward")
	assert.True(t, Expired(dead, now, 0))
	assert.False(t, Expired("opaque-token", now, 0))
}

func TestValidateCredential(t *testing.T) {
	assert.ErrorIs(t, ValidateCredential("short"), ErrWeakPassword)
	assert.NoError(t, ValidateCredential("long-enough"))

	assert.ErrorIs(t, ValidateLogin("", "x"), ErrInvalidCredentials)
	assert.ErrorIs(t, ValidateLogin("not-an-email", "x"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateLogin("Alice <alice@example.com>", "x"), ErrInvalidEmail)
	assert.NoError(t, ValidateLogin("alice@example.com", "x"))
}
