package identity

import "errors"

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrNoSecret     = errors.New("session secret is required")
)
