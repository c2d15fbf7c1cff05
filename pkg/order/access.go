package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/identity"
)

// AccessService answers whether an account may view an order. Decisions are
// made against current storage on every call, so an unassignment or role
// change takes effect immediately.
type AccessService struct {
	repo Repository
}

// NewAccessService creates an order access checker.
func NewAccessService(repo Repository) *AccessService {
	return &AccessService{repo: repo}
}

// CanAccessOrder reports whether the caller may view the order. Admins may
// view any order; students and writers only their own. Returns ErrNotFound
// when the order does not exist.
func (s *AccessService) CanAccessOrder(ctx context.Context, callerID uuid.UUID, role identity.Role, orderID uuid.UUID) (bool, error) {
	if role == identity.RoleAdmin {
		if _, err := s.repo.GetByID(ctx, orderID); err != nil {
			if err == ErrNotFound {
				return false, ErrNotFound
			}
			return false, fmt.Errorf("failed to check order access: %w", err)
		}
		return true, nil
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if err == ErrNotFound {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to check order access: %w", err)
	}

	if o.StudentID == callerID {
		return true, nil
	}
	if o.WriterID != nil && *o.WriterID == callerID {
		return true, nil
	}
	return false, nil
}
