package identity

import "errors"

var (
	// ErrDuplicateEmail is returned when registering an email that already
	// has an identity.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidEmail is returned when the email is not syntactically valid.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when a password is shorter than the
	// configured minimum.
	ErrWeakPassword = errors.New("password does not meet minimum length")

	// ErrTokenInvalid covers expired, consumed and unknown tokens alike so
	// the caller-facing message stays uniform.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrNotFound is returned when an identity lookup by ID misses.
	ErrNotFound = errors.New("identity not found")

	// ErrStorage is what callers see for any persistence failure. The real
	// cause is logged, never surfaced.
	ErrStorage = errors.New("storage failure")
)
