package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryIdentityRepository implements Repository using in-memory storage.
// Token consumption happens under the write lock, so the check-and-clear is
// atomic with respect to racing requests.
type InMemoryIdentityRepository struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]Identity
	byEmail    map[string]uuid.UUID
}

// NewInMemoryIdentityRepository creates a new in-memory identity repository.
func NewInMemoryIdentityRepository() *InMemoryIdentityRepository {
	return &InMemoryIdentityRepository{
		identities: make(map[uuid.UUID]Identity),
		byEmail:    make(map[string]uuid.UUID),
	}
}

// Create persists a new identity.
func (r *InMemoryIdentityRepository) Create(ctx context.Context, ident Identity) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(ident.Email)
	if _, exists := r.byEmail[email]; exists {
		return Identity{}, ErrDuplicateEmail
	}

	if ident.ID == uuid.Nil {
		ident.ID = uuid.New()
	}
	now := time.Now()
	ident.Email = email
	ident.CreatedAt = now
	ident.UpdatedAt = now

	r.identities[ident.ID] = ident
	r.byEmail[email] = ident.ID
	return ident, nil
}

// GetByEmail returns the identity for the email, or nil.
func (r *InMemoryIdentityRepository) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	ident := r.identities[id]
	return &ident, nil
}

// GetByID returns the identity, or ErrNotFound.
func (r *InMemoryIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ident, nil
}

// SetToken overwrites the shared token slot and its expiry.
func (r *InMemoryIdentityRepository) SetToken(ctx context.Context, id uuid.UUID, token string, expiresAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.identities[id]
	if !ok {
		return ErrNotFound
	}
	ident.Token = &token
	ident.TokenExpiresAt = expiresAt
	ident.UpdatedAt = time.Now()
	r.identities[id] = ident
	return nil
}

// ConsumeVerificationToken atomically verifies and clears a matching token.
func (r *InMemoryIdentityRepository) ConsumeVerificationToken(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, ident := range r.identities {
		if ident.Token != nil && *ident.Token == token && !ident.EmailVerified {
			ident.EmailVerified = true
			ident.Token = nil
			ident.TokenExpiresAt = nil
			ident.UpdatedAt = time.Now()
			r.identities[id] = ident
			return true, nil
		}
	}
	return false, nil
}

// ConsumeResetToken atomically replaces the password hash for a matching
// unexpired reset token and clears the slot.
func (r *InMemoryIdentityRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, ident := range r.identities {
		if ident.Token == nil || *ident.Token != token {
			continue
		}
		if ident.TokenExpiresAt == nil || now.After(*ident.TokenExpiresAt) {
			// Reset tokens always carry an expiry; a bare verification
			// token in the slot cannot reset a password.
			return false, nil
		}
		ident.PasswordHash = passwordHash
		ident.Token = nil
		ident.TokenExpiresAt = nil
		ident.UpdatedAt = time.Now()
		r.identities[id] = ident
		return true, nil
	}
	return false, nil
}

// SeedIdentity adds an identity directly (for testing/initialization).
func (r *InMemoryIdentityRepository) SeedIdentity(ident Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ident.ID == uuid.Nil {
		ident.ID = uuid.New()
	}
	ident.Email = strings.ToLower(ident.Email)
	r.identities[ident.ID] = ident
	r.byEmail[ident.Email] = ident.ID
}
