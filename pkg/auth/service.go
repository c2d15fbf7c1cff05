package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/identity"
	"github.com/campusworks/platform/pkg/password"
	"github.com/campusworks/platform/pkg/session"
	"github.com/campusworks/platform/pkg/throttle"
)

// AuthService is the single entry point for authentication: it wires the
// credential store, the password hasher, the login throttle and the session
// manager behind one API.
type AuthService struct {
	identities *identity.Service
	hasher     password.Hasher
	throttle   *throttle.Throttle
	sessions   *session.Manager
}

// NewAuthService creates the authentication facade.
func NewAuthService(identities *identity.Service, hasher password.Hasher, th *throttle.Throttle, sessions *session.Manager) *AuthService {
	return &AuthService{
		identities: identities,
		hasher:     hasher,
		throttle:   th,
		sessions:   sessions,
	}
}

// Login authenticates the email and password against the caller's session
// context. The lockout gate runs before credential verification, so a locked
// email is refused even when the password is correct. On success the failure
// history clears and the session is rebound under a fresh ID.
func (s *AuthService) Login(ctx context.Context, sessionID, email, plainPassword string) (*session.Session, error) {
	email = identity.NormalizeEmail(email)

	locked, err := s.throttle.IsLocked(ctx, sessionID, email)
	if err != nil {
		slog.Error("Failed checking login throttle", "err", err)
		return nil, ErrStorage
	}
	if locked {
		slog.Warn("Login attempt against locked account", "email", email)
		return nil, ErrAccountLocked
	}

	ident, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrStorage
	}
	if ident == nil {
		s.recordFailure(ctx, sessionID, email)
		return nil, ErrInvalidCredentials
	}

	if ident.Status != identity.StatusActive {
		// Suspended accounts get the same answer as a wrong password.
		slog.Warn("Login attempt on suspended account", "identity_id", ident.ID)
		s.recordFailure(ctx, sessionID, email)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(plainPassword, ident.PasswordHash)
	if err != nil {
		slog.Error("Failed verifying password", "err", err)
		return nil, ErrStorage
	}
	if !ok {
		s.recordFailure(ctx, sessionID, email)
		return nil, ErrInvalidCredentials
	}

	if err := s.throttle.Clear(ctx, sessionID, email); err != nil {
		slog.Error("Failed clearing login throttle", "err", err)
		return nil, ErrStorage
	}

	sess, err := s.sessions.Authenticate(ctx, sessionID, session.AuthenticatedUser{
		IdentityID:  ident.ID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName(),
		Role:        string(ident.Role),
	})
	if err != nil {
		slog.Error("Failed establishing session", "identity_id", ident.ID, "err", err)
		return nil, ErrStorage
	}
	return sess, nil
}

// Logout destroys the session and returns a fresh anonymous one.
func (s *AuthService) Logout(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Logout(ctx, sessionID)
	if err != nil {
		slog.Error("Failed logging out", "err", err)
		return nil, ErrStorage
	}
	return sess, nil
}

// Register creates a new student account.
func (s *AuthService) Register(ctx context.Context, params identity.RegisterParams) (uuid.UUID, error) {
	return s.identities.Register(ctx, params)
}

// VerifyEmail consumes an email verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (bool, error) {
	return s.identities.VerifyEmail(ctx, token)
}

// RequestPasswordReset starts the reset flow. Always reports success for
// well-formed requests regardless of whether the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.identities.InitPasswordReset(ctx, email)
}

// ResetPassword completes the reset flow with the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.identities.ResetPassword(ctx, token, newPassword)
}

// IsLoggedIn reports whether the session is live and bound to an identity.
func (s *AuthService) IsLoggedIn(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.IsAuthenticated(ctx, sessionID)
}

// HasRole reports whether the session's identity holds exactly the role.
func (s *AuthService) HasRole(ctx context.Context, sessionID string, role identity.Role) (bool, error) {
	return s.sessions.HasRole(ctx, sessionID, string(role))
}

// CurrentUser returns the session's identity summary, or ErrNotAuthenticated.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		slog.Error("Failed loading session", "err", err)
		return nil, ErrStorage
	}
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}

// Session returns the live session for the ID, anonymous or authenticated,
// or nil when the ID no longer resolves (absent or idle-expired).
func (s *AuthService) Session(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		slog.Error("Failed loading session", "err", err)
		return nil, ErrStorage
	}
	return sess, nil
}

// BeginSession starts an anonymous session for a new browser.
func (s *AuthService) BeginSession(ctx context.Context) (*session.Session, error) {
	return s.sessions.Begin(ctx)
}

// IssueCSRFToken returns the session's CSRF token for form rendering.
func (s *AuthService) IssueCSRFToken(ctx context.Context, sessionID string) (string, error) {
	return s.sessions.IssueCSRF(ctx, sessionID)
}

// ValidateCSRFToken checks a submitted token against the session's token.
func (s *AuthService) ValidateCSRFToken(ctx context.Context, sessionID, token string) (bool, error) {
	return s.sessions.ValidateCSRF(ctx, sessionID, token)
}

func (s *AuthService) recordFailure(ctx context.Context, sessionID, email string) {
	if err := s.throttle.RecordFailure(ctx, sessionID, email); err != nil {
		slog.Error("Failed recording login failure", "err", err)
	}
}
