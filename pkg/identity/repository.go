package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists identities. Token consumption methods are atomic
// check-and-clear operations: two racing requests presenting the same token
// must see exactly one success.
type Repository interface {
	// Create persists a new identity. Returns ErrDuplicateEmail when the
	// email (case-insensitive) already exists.
	Create(ctx context.Context, ident Identity) (Identity, error)

	// GetByEmail returns the identity for the lowercased email, or nil if
	// no identity exists.
	GetByEmail(ctx context.Context, email string) (*Identity, error)

	// GetByID returns the identity, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Identity, error)

	// SetToken overwrites the shared token slot and its expiry.
	SetToken(ctx context.Context, id uuid.UUID, token string, expiresAt *time.Time) error

	// ConsumeVerificationToken atomically marks the matching unverified
	// identity as verified and clears the token slot. Reports whether a
	// match occurred.
	ConsumeVerificationToken(ctx context.Context, token string) (bool, error)

	// ConsumeResetToken atomically replaces the password hash and clears
	// the token slot for the identity whose unexpired reset token matches.
	// Reports whether a match occurred.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error)
}
