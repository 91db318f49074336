package auth

import (
	"errors"
	"fmt"
)

// Outcome kinds produced by the authentication core. Callers compare with errors.Is;
// the HTTP boundary maps each kind to a stable status and message.
var (
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrUnauthenticated    = errors.New("auth: unauthenticated")
	ErrSessionConflict    = errors.New("auth: session already live")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountNotFound    = errors.New("auth: account not found")
	ErrForbidden          = errors.New("auth: forbidden")
)

// ErrSessionExpired is reported when resolution observes a session past its TTL.
// It matches ErrUnauthenticated.
var ErrSessionExpired = fmt.Errorf("%w: session expired", ErrUnauthenticated)
