package auth

import "errors"

// Sentinel errors returned by the auth subsystem. Callers wrap them with
// fmt.Errorf("%w: detail") so the HTTP boundary can map them to status codes
// with errors.Is while keeping human-readable messages.
var (
	ErrInvalidInput    = errors.New("auth: invalid input")
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	ErrForbidden       = errors.New("auth: forbidden")
	ErrNotFound        = errors.New("auth: not found")
	ErrConflict        = errors.New("auth: conflict")
)

// ErrInvalidToken indicates a session token failed signature or expiry checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// ErrNoSecret is returned when token issuance is attempted without a signing
// secret configured.
var ErrNoSecret = errors.New("auth: signing secret is not configured")
