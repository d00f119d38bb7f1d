// Package common defines shared constants and sentinel errors used across
// the SecureChat client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Service-level errors (generic flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorNotFound     = errors.New("not found")

	// Wallet errors.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Message validation errors.
	ErrEmptyMessage = errors.New("message has no content")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
