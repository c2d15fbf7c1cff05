package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresIdentityRepository implements Repository on a pgx pool. The token
// consumption queries are single UPDATE statements, so the check-and-clear
// is atomic at the database.
type PostgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIdentityRepository creates a new PostgreSQL-based identity repository.
func NewPostgresIdentityRepository(pool *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		pool: pool,
	}
}

const identityColumns = `id, email, password_hash, first_name, last_name, academic_level,
	role, status, email_verified, token, token_expires_at, balance, created_at, updated_at`

func scanIdentity(row pgx.Row) (Identity, error) {
	var ident Identity
	err := row.Scan(
		&ident.ID, &ident.Email, &ident.PasswordHash, &ident.FirstName, &ident.LastName,
		&ident.AcademicLevel, &ident.Role, &ident.Status, &ident.EmailVerified,
		&ident.Token, &ident.TokenExpiresAt, &ident.Balance, &ident.CreatedAt, &ident.UpdatedAt,
	)
	return ident, err
}

// Create persists a new identity.
func (r *PostgresIdentityRepository) Create(ctx context.Context, ident Identity) (Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (email, password_hash, first_name, last_name, academic_level,
			role, status, email_verified, token, token_expires_at, balance)
		VALUES (lower($1), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+identityColumns,
		ident.Email, ident.PasswordHash, ident.FirstName, ident.LastName, ident.AcademicLevel,
		ident.Role, ident.Status, ident.EmailVerified, ident.Token, ident.TokenExpiresAt, ident.Balance,
	)

	created, err := scanIdentity(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Identity{}, ErrDuplicateEmail
		}
		return Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}
	return created, nil
}

// GetByEmail returns the identity for the email, or nil.
func (r *PostgresIdentityRepository) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE email = lower($1)`, email)

	ident, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity by email: %w", err)
	}
	return &ident, nil
}

// GetByID returns the identity, or ErrNotFound.
func (r *PostgresIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE id = $1`, id)

	ident, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &ident, nil
}

// SetToken overwrites the shared token slot and its expiry.
func (r *PostgresIdentityRepository) SetToken(ctx context.Context, id uuid.UUID, token string, expiresAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET token = $2, token_expires_at = $3, updated_at = now()
		WHERE id = $1`, id, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken atomically verifies and clears a matching token.
func (r *PostgresIdentityRepository) ConsumeVerificationToken(ctx context.Context, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET email_verified = TRUE, token = NULL, token_expires_at = NULL, updated_at = now()
		WHERE token = $1 AND email_verified = FALSE`, token)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ConsumeResetToken atomically replaces the password hash for a matching
// unexpired reset token and clears the slot.
func (r *PostgresIdentityRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET password_hash = $2, token = NULL, token_expires_at = NULL, updated_at = now()
		WHERE token = $1 AND token_expires_at IS NOT NULL AND token_expires_at > $3`, token, passwordHash, now)
	if err != nil {
		return false, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
