package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/notification"
	"github.com/campusworks/platform/pkg/password"
	"github.com/campusworks/platform/pkg/securetoken"
)

const (
	// DefaultMinPasswordLength is the registration and reset floor.
	DefaultMinPasswordLength = 8

	// DefaultResetTokenTTL bounds how long a password-reset link stays valid.
	DefaultResetTokenTTL = time.Hour
)

// Service implements the credential store operations: registration, lookup,
// email verification and the password-reset flow.
type Service struct {
	repo                Repository
	hasher              password.Hasher
	notificationManager *notification.NotificationManager
	minPasswordLength   int
	resetTokenTTL       time.Duration
	now                 func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotificationManager enables verification and reset emails. Without it
// the service still works; sends are skipped.
func WithNotificationManager(nm *notification.NotificationManager) Option {
	return func(s *Service) {
		s.notificationManager = nm
	}
}

// WithMinPasswordLength overrides the password length floor.
func WithMinPasswordLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minPasswordLength = n
		}
	}
}

// WithResetTokenTTL overrides the reset token lifetime.
func WithResetTokenTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.resetTokenTTL = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an identity service.
func NewService(repo Repository, hasher password.Hasher, opts ...Option) *Service {
	s := &Service{
		repo:              repo,
		hasher:            hasher,
		minPasswordLength: DefaultMinPasswordLength,
		resetTokenTTL:     DefaultResetTokenTTL,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams carries the registration form fields.
type RegisterParams struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	AcademicLevel AcademicLevel
}

// Register creates a new student identity with a fresh verification token
// in the shared slot and sends the verification email best-effort.
func (s *Service) Register(ctx context.Context, params RegisterParams) (uuid.UUID, error) {
	email := NormalizeEmail(params.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, ErrInvalidEmail
	}
	if len(params.Password) < s.minPasswordLength {
		return uuid.Nil, ErrWeakPassword
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		slog.Error("Failed checking for existing identity", "err", err)
		return uuid.Nil, ErrStorage
	}
	if existing != nil {
		return uuid.Nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		slog.Error("Failed hashing password", "err", err)
		return uuid.Nil, ErrStorage
	}

	token, err := securetoken.Generate(securetoken.MinBytes)
	if err != nil {
		slog.Error("Failed generating verification token", "err", err)
		return uuid.Nil, ErrStorage
	}

	level := params.AcademicLevel
	if level == "" {
		level = LevelUndergraduate
	}

	created, err := s.repo.Create(ctx, Identity{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(params.FirstName),
		LastName:      strings.TrimSpace(params.LastName),
		AcademicLevel: level,
		Role:          RoleStudent,
		Status:        StatusActive,
		Token:         &token,
	})
	if err != nil {
		if err == ErrDuplicateEmail {
			return uuid.Nil, ErrDuplicateEmail
		}
		slog.Error("Failed creating identity", "err", err)
		return uuid.Nil, ErrStorage
	}

	s.sendVerificationEmail(created, token)

	slog.Info("Identity registered", "identity_id", created.ID)
	return created.ID, nil
}

// FindByEmail returns the identity for the email, or nil when none exists.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	ident, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		slog.Error("Failed looking up identity", "err", err)
		return nil, ErrStorage
	}
	return ident, nil
}

// GetByID returns the identity, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	ident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		slog.Error("Failed looking up identity", "identity_id", id, "err", err)
		return nil, ErrStorage
	}
	return ident, nil
}

// VerifyEmail consumes the verification token. It reports true exactly once
// per token: re-submission after success finds the slot cleared and reports
// false.
func (s *Service) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	matched, err := s.repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		slog.Error("Failed consuming verification token", "err", err)
		return false, ErrStorage
	}
	return matched, nil
}

// InitPasswordReset places a fresh reset token in the shared slot with a
// one-hour expiry and sends the reset email. An unknown email is logged and
// reported as success so the endpoint cannot be used to enumerate accounts.
func (s *Service) InitPasswordReset(ctx context.Context, email string) error {
	ident, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		slog.Error("Failed looking up identity for reset", "err", err)
		return ErrStorage
	}
	if ident == nil {
		slog.Warn("Password reset requested for unknown email")
		return nil
	}

	token, err := securetoken.Generate(securetoken.MinBytes)
	if err != nil {
		slog.Error("Failed generating reset token", "err", err)
		return ErrStorage
	}

	expiresAt := s.now().Add(s.resetTokenTTL)
	if err := s.repo.SetToken(ctx, ident.ID, token, &expiresAt); err != nil {
		slog.Error("Failed saving reset token", "identity_id", ident.ID, "err", err)
		return ErrStorage
	}

	s.sendPasswordResetEmail(*ident, token)
	return nil
}

// ResetPassword consumes an unexpired reset token and replaces the password
// hash atomically, so a racing duplicate submission of the same token fails.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < s.minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		slog.Error("Failed hashing password", "err", err)
		return ErrStorage
	}

	matched, err := s.repo.ConsumeResetToken(ctx, token, hash, s.now())
	if err != nil {
		slog.Error("Failed consuming reset token", "err", err)
		return ErrStorage
	}
	if !matched {
		return ErrTokenInvalid
	}

	slog.Info("Password reset completed")
	return nil
}

// NormalizeEmail lowercases and trims an email so lookups are
// case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) sendVerificationEmail(ident Identity, token string) {
	if s.notificationManager == nil || ident.Token == nil {
		return
	}
	link := fmt.Sprintf("%s/verify-email?token=%s", s.notificationManager.BaseUrl, token)
	err := s.notificationManager.Send(notification.EmailVerifyNotice, notification.NotificationData{
		To: ident.Email,
		Data: map[string]string{
			"Name": ident.DisplayName(),
			"Link": link,
		},
	})
	if err != nil {
		// Best effort: the identity exists either way.
		slog.Error("Failed sending verification email", "identity_id", ident.ID, "err", err)
	}
}

func (s *Service) sendPasswordResetEmail(ident Identity, token string) {
	if s.notificationManager == nil {
		return
	}
	link := fmt.Sprintf("%s/password-reset/%s", s.notificationManager.BaseUrl, token)
	err := s.notificationManager.Send(notification.PasswordResetNotice, notification.NotificationData{
		To: ident.Email,
		Data: map[string]string{
			"Name": ident.DisplayName(),
			"Link": link,
		},
	})
	if err != nil {
		slog.Error("Failed sending password reset email", "identity_id", ident.ID, "err", err)
	}
}
