package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/identity"
)

// Repository is the storage interface for orders and their categories.
type Repository interface {
	// Create persists a new order and returns it with storage-assigned
	// fields filled in.
	Create(ctx context.Context, o Order) (Order, error)

	// GetByID returns the order, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByStudent returns the orders placed by the student, newest first.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Order, error)

	// ListByWriter returns the orders assigned to the writer, newest first.
	ListByWriter(ctx context.Context, writerID uuid.UUID) ([]Order, error)

	// AssignWriter sets the writer and moves the order to in_progress.
	// Returns ErrNotFound when the order does not exist.
	AssignWriter(ctx context.Context, orderID, writerID uuid.UUID) error

	// UpdateStatus moves the order to the given status.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error

	// Stats aggregates dashboard counters. For admins the identity is
	// ignored and revenue over paid orders is included; for students and
	// writers the counts are scoped to their own orders.
	Stats(ctx context.Context, identityID uuid.UUID, role identity.Role) (Stats, error)

	// GetCategory returns the pricing category, or ErrCategoryNotFound.
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
}
