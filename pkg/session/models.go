package session

import (
	"time"

	"github.com/google/uuid"
)

// Session correlates a browser context to an identity. Anonymous sessions
// (IdentityID == uuid.Nil) exist so the CSRF token is available before
// login; authenticated sessions additionally cache the identity fields the
// request path checks on every hit.
type Session struct {
	ID           string
	IdentityID   uuid.UUID
	Email        string
	DisplayName  string
	Role         string
	CSRFToken    string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Authenticated reports whether the session is bound to an identity.
func (s *Session) Authenticated() bool {
	return s != nil && s.IdentityID != uuid.Nil
}

// AuthenticatedUser is the identity summary cached on an authenticated
// session at login time.
type AuthenticatedUser struct {
	IdentityID  uuid.UUID
	Email       string
	DisplayName string
	Role        string
}
