package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown emails, wrong passwords and
	// suspended accounts alike, so the response never reveals which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked means too many recent failures for this email.
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrNotAuthenticated means no live authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStorage covers backend failures; details stay in the server log.
	ErrStorage = errors.New("storage error")
)
