package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is assigned at creation or administratively, never through the
// registration or login path.
type Role string

const (
	RoleStudent Role = "student"
	RoleWriter  Role = "writer"
	RoleAdmin   Role = "admin"
)

// Status gates login: only active identities may authenticate.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// AcademicLevel feeds order pricing.
type AcademicLevel string

const (
	LevelHighSchool    AcademicLevel = "high_school"
	LevelUndergraduate AcademicLevel = "undergraduate"
	LevelGraduate      AcademicLevel = "graduate"
	LevelPhd           AcademicLevel = "phd"
)

// Identity is a registered account. Token and TokenExpiresAt form a single
// shared slot: it holds either the email-verification token (no expiry) or
// the password-reset token (1 hour expiry), never both. Issuing one
// overwrites the other.
type Identity struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	AcademicLevel  AcademicLevel
	Role           Role
	Status         Status
	EmailVerified  bool
	Token          *string
	TokenExpiresAt *time.Time
	Balance        int64 // cents
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName returns the name shown in dashboards and session summaries.
func (i *Identity) DisplayName() string {
	return i.FirstName + " " + i.LastName
}
