package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusworks/platform/pkg/securetoken"
)

// DefaultIdleTimeout matches the reference deployment: a session with no
// activity for 30 minutes is treated as logged out.
const DefaultIdleTimeout = 30 * time.Minute

// Manager creates, validates, refreshes and destroys sessions. Expiry is
// lazy: it is checked when the session is read, never by a timer.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout sets the inactivity window after which a session expires.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a session manager backed by the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin starts a fresh anonymous session with a CSRF token already bound,
// so state-changing forms can be protected before any login happens.
func (m *Manager) Begin(ctx context.Context) (*Session, error) {
	id, err := securetoken.Generate(securetoken.MinBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	csrf, err := securetoken.Generate(securetoken.MinBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	now := m.now()
	session := &Session{
		ID:           id,
		CSRFToken:    csrf,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// Authenticate binds a new session to the given identity. The session ID is
// always freshly generated and the prior session destroyed, so a session ID
// fixed before login never survives it. The CSRF token carries over from
// the prior session: forms rendered before login stay submittable.
func (m *Manager) Authenticate(ctx context.Context, priorID string, user AuthenticatedUser) (*Session, error) {
	var csrf string
	if priorID != "" {
		prior, err := m.store.Get(ctx, priorID)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior session: %w", err)
		}
		if prior != nil {
			csrf = prior.CSRFToken
			if err := m.store.Delete(ctx, priorID); err != nil {
				return nil, fmt.Errorf("failed to destroy prior session: %w", err)
			}
		}
	}

	id, err := securetoken.Generate(securetoken.MinBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	if csrf == "" {
		csrf, err = securetoken.Generate(securetoken.MinBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to generate csrf token: %w", err)
		}
	}

	now := m.now()
	session := &Session{
		ID:           id,
		IdentityID:   user.IdentityID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Role:         user.Role,
		CSRFToken:    csrf,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := m.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("Session established", "identity_id", user.IdentityID, "role", user.Role)
	return session, nil
}

// Current returns the live session for the given ID, refreshing its
// last-activity stamp. A session idle past the timeout is destroyed and
// reported as absent, which is indistinguishable from a logout.
func (m *Manager) Current(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	now := m.now()
	if now.Sub(session.LastActivity) > m.idleTimeout {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to destroy expired session: %w", err)
		}
		slog.Info("Session expired", "identity_id", session.IdentityID)
		return nil, nil
	}

	session.LastActivity = now
	if err := m.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return session, nil
}

// IsAuthenticated reports whether the session exists, is not idle-expired
// and is bound to an identity.
func (m *Manager) IsAuthenticated(ctx context.Context, id string) (bool, error) {
	session, err := m.Current(ctx, id)
	if err != nil {
		return false, err
	}
	return session.Authenticated(), nil
}

// HasRole reports whether the session is authenticated with exactly the
// given role. Roles do not form a hierarchy: an admin session does not
// satisfy a writer check.
func (m *Manager) HasRole(ctx context.Context, id, role string) (bool, error) {
	session, err := m.Current(ctx, id)
	if err != nil {
		return false, err
	}
	return session.Authenticated() && session.Role == role, nil
}

// Logout destroys the session and hands back a fresh anonymous one, so the
// browser context starts clean for any subsequent login.
func (m *Manager) Logout(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return m.Begin(ctx)
}

// IssueCSRF returns the session's CSRF token. The token is created when
// the session starts and never rotated while the session lives.
func (m *Manager) IssueCSRF(ctx context.Context, id string) (string, error) {
	session, err := m.Current(ctx, id)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNoSession
	}
	return session.CSRFToken, nil
}

// ValidateCSRF compares a caller-submitted token against the session's
// token in constant time.
func (m *Manager) ValidateCSRF(ctx context.Context, id, submitted string) (bool, error) {
	session, err := m.Current(ctx, id)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	return securetoken.Equal(session.CSRFToken, submitted), nil
}
