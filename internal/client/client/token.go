package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenAlive reports whether the access token still has time to live at the
// given instant. The signature is not verified here (the backend owns the
// key); the check only avoids a round trip that is guaranteed to fail.
// An empty or unparseable token counts as expired.
func tokenAlive(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No exp claim: let the server decide.
		return true
	}
	return now.Before(exp.Time)
}
