package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/platform/pkg/notification"
	"github.com/campusworks/platform/pkg/password"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *InMemoryIdentityRepository, *notification.MockNotifier) {
	t.Helper()
	repo := NewInMemoryIdentityRepository()
	mock := notification.NewMockNotifier()
	nm := notification.NewNotificationManager(mock, "http://localhost:3000")
	opts = append([]Option{WithNotificationManager(nm)}, opts...)
	svc := NewService(repo, password.NewBcryptHasher(bcrypt.MinCost), opts...)
	return svc, repo, mock
}

func TestRegister(t *testing.T) {
	svc, repo, mock := newTestService(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterParams{
		Email:     "Alice@Example.com",
		Password:  "correcthorse",
		FirstName: "Alice",
		LastName:  "Nguyen",
	})
	require.NoError(t, err)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())

	ident, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, "alice@example.com", ident.Email)
	assert.Equal(t, RoleStudent, ident.Role)
	assert.Equal(t, StatusActive, ident.Status)
	assert.False(t, ident.EmailVerified)
	require.NotNil(t, ident.Token)
	assert.Nil(t, ident.TokenExpiresAt)
	assert.NotEqual(t, "correcthorse", ident.PasswordHash)

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.EmailVerifyNotice, sent[0].Type)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Contains(t, sent[0].Data["Link"], *ident.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "bob@example.com", Password: "correcthorse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Email: "BOB@example.com", Password: "correcthorse"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "not-an-email", Password: "correcthorse"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, RegisterParams{Email: "carol@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestVerifyEmailConsumesToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "dan@example.com", Password: "correcthorse"})
	require.NoError(t, err)

	ident, err := repo.GetByEmail(ctx, "dan@example.com")
	require.NoError(t, err)
	token := *ident.Token

	ok, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	ident, err = repo.GetByEmail(ctx, "dan@example.com")
	require.NoError(t, err)
	assert.True(t, ident.EmailVerified)
	assert.Nil(t, ident.Token)

	// Same token a second time finds the slot cleared.
	ok, err = svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyEmail(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInitPasswordReset(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, mock := newTestService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "erin@example.com", Password: "correcthorse"})
	require.NoError(t, err)

	require.NoError(t, svc.InitPasswordReset(ctx, "erin@example.com"))

	ident, err := repo.GetByEmail(ctx, "erin@example.com")
	require.NoError(t, err)
	require.NotNil(t, ident.Token)
	require.NotNil(t, ident.TokenExpiresAt)
	assert.Equal(t, now.Add(time.Hour), *ident.TokenExpiresAt)

	sent := mock.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, notification.PasswordResetNotice, sent[1].Type)
	assert.Contains(t, sent[1].Data["Link"], *ident.Token)
}

func TestInitPasswordResetUnknownEmail(t *testing.T) {
	svc, _, mock := newTestService(t)

	// Unknown email reports success and sends nothing, so the endpoint
	// cannot be used to probe for accounts.
	err := svc.InitPasswordReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, mock.Sent())
}

func TestResetPasswordSingleUse(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "finn@example.com", Password: "oldpassword"})
	require.NoError(t, err)
	require.NoError(t, svc.InitPasswordReset(ctx, "finn@example.com"))

	ident, err := repo.GetByEmail(ctx, "finn@example.com")
	require.NoError(t, err)
	token := *ident.Token
	oldHash := ident.PasswordHash

	require.NoError(t, svc.ResetPassword(ctx, token, "newpassword"))

	ident, err = repo.GetByEmail(ctx, "finn@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, ident.PasswordHash)
	assert.Nil(t, ident.Token)
	assert.Nil(t, ident.TokenExpiresAt)

	err = svc.ResetPassword(ctx, token, "anotherpassword")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "gus@example.com", Password: "oldpassword"})
	require.NoError(t, err)
	require.NoError(t, svc.InitPasswordReset(ctx, "gus@example.com"))

	ident, err := repo.GetByEmail(ctx, "gus@example.com")
	require.NoError(t, err)
	token := *ident.Token

	now = now.Add(time.Hour + time.Minute)
	err = svc.ResetPassword(ctx, token, "newpassword")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordRejectsVerificationToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "hana@example.com", Password: "oldpassword"})
	require.NoError(t, err)

	// The verification token has no expiry and must not work as a reset
	// token even though it sits in the same slot.
	ident, err := repo.GetByEmail(ctx, "hana@example.com")
	require.NoError(t, err)
	err = svc.ResetPassword(ctx, *ident.Token, "newpassword")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordWeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.ResetPassword(context.Background(), "whatever", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestResetOverwritesVerificationToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "iris@example.com", Password: "correcthorse"})
	require.NoError(t, err)

	ident, err := repo.GetByEmail(ctx, "iris@example.com")
	require.NoError(t, err)
	verifyToken := *ident.Token

	require.NoError(t, svc.InitPasswordReset(ctx, "iris@example.com"))

	// The shared slot now holds the reset token; the old verification
	// token no longer verifies.
	ok, err := svc.VerifyEmail(ctx, verifyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
