package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenAlive(t *testing.T) {
	now := time.Now()

	fresh := signedToken(t, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	expired := signedToken(t, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
	noExp := signedToken(t, jwt.RegisteredClaims{Subject: "u1"})

	assert.True(t, tokenAlive(fresh, now))
	assert.False(t, tokenAlive(expired, now))
	assert.True(t, tokenAlive(noExp, now), "token without exp is left to the server")
	assert.False(t, tokenAlive("", now))
	assert.False(t, tokenAlive("not-a-jwt", now))
}
