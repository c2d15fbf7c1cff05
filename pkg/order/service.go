package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/identity"
	"github.com/campusworks/platform/pkg/notification"
)

// IdentityLookup is the slice of the identity service the order service
// needs for assignment notifications.
type IdentityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error)
}

// Service implements order placement, assignment and dashboard queries.
type Service struct {
	repo                Repository
	calculator          PriceCalculator
	identities          IdentityLookup
	notificationManager *notification.NotificationManager
	now                 func() time.Time
}

// ServiceOption configures an order Service.
type ServiceOption func(*Service)

// WithIdentityLookup enables writer lookups for assignment notices.
func WithIdentityLookup(lookup IdentityLookup) ServiceOption {
	return func(s *Service) {
		s.identities = lookup
	}
}

// WithNotificationManager enables assignment emails.
func WithNotificationManager(nm *notification.NotificationManager) ServiceOption {
	return func(s *Service) {
		s.notificationManager = nm
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates an order service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceParams carries the order form fields.
type PlaceParams struct {
	StudentID     uuid.UUID
	CategoryID    uuid.UUID
	Title         string
	Instructions  string
	WordCount     int
	AcademicLevel identity.AcademicLevel
	DeadlineDays  int
}

// Place prices and persists a new order. The order starts pending and
// unpaid with no writer assigned.
func (s *Service) Place(ctx context.Context, params PlaceParams) (Order, error) {
	if params.WordCount <= 0 {
		return Order{}, ErrInvalidWordCount
	}
	if params.DeadlineDays < 1 {
		return Order{}, ErrInvalidDeadline
	}

	category, err := s.repo.GetCategory(ctx, params.CategoryID)
	if err != nil {
		if err == ErrCategoryNotFound {
			return Order{}, ErrCategoryNotFound
		}
		slog.Error("Failed loading category", "category_id", params.CategoryID, "err", err)
		return Order{}, ErrStorage
	}

	number, err := GenerateOrderNumber(s.now())
	if err != nil {
		slog.Error("Failed generating order number", "err", err)
		return Order{}, ErrStorage
	}

	total := s.calculator.Calculate(category.BasePrice, params.WordCount, params.AcademicLevel, params.DeadlineDays)

	created, err := s.repo.Create(ctx, Order{
		Number:        number,
		StudentID:     params.StudentID,
		CategoryID:    params.CategoryID,
		Title:         strings.TrimSpace(params.Title),
		Instructions:  params.Instructions,
		WordCount:     params.WordCount,
		AcademicLevel: params.AcademicLevel,
		DeadlineDays:  params.DeadlineDays,
		TotalPrice:    total,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
	})
	if err != nil {
		slog.Error("Failed creating order", "err", err)
		return Order{}, ErrStorage
	}

	slog.Info("Order placed", "order_id", created.ID, "order_number", created.Number)
	return created, nil
}

// Get returns the order, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		slog.Error("Failed loading order", "order_id", id, "err", err)
		return nil, ErrStorage
	}
	return o, nil
}

// ListFor returns the orders visible on the account's own dashboard. Admins
// should query through repository listings directly.
func (s *Service) ListFor(ctx context.Context, identityID uuid.UUID, role identity.Role) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	if role == identity.RoleWriter {
		orders, err = s.repo.ListByWriter(ctx, identityID)
	} else {
		orders, err = s.repo.ListByStudent(ctx, identityID)
	}
	if err != nil {
		slog.Error("Failed listing orders", "identity_id", identityID, "err", err)
		return nil, ErrStorage
	}
	return orders, nil
}

// AssignWriter gives the order to a writer and notifies them best-effort.
func (s *Service) AssignWriter(ctx context.Context, orderID, writerID uuid.UUID) error {
	if err := s.repo.AssignWriter(ctx, orderID, writerID); err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		slog.Error("Failed assigning writer", "order_id", orderID, "err", err)
		return ErrStorage
	}

	s.sendAssignmentNotice(ctx, orderID, writerID)

	slog.Info("Writer assigned", "order_id", orderID, "writer_id", writerID)
	return nil
}

// UpdateStatus moves the order to the given status.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		slog.Error("Failed updating order status", "order_id", orderID, "err", err)
		return ErrStorage
	}
	return nil
}

// StatsFor returns the dashboard counters for the account.
func (s *Service) StatsFor(ctx context.Context, identityID uuid.UUID, role identity.Role) (Stats, error) {
	stats, err := s.repo.Stats(ctx, identityID, role)
	if err != nil {
		slog.Error("Failed loading order stats", "identity_id", identityID, "err", err)
		return Stats{}, ErrStorage
	}
	return stats, nil
}

func (s *Service) sendAssignmentNotice(ctx context.Context, orderID, writerID uuid.UUID) {
	if s.notificationManager == nil || s.identities == nil {
		return
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		slog.Error("Failed loading order for assignment notice", "order_id", orderID, "err", err)
		return
	}
	writer, err := s.identities.GetByID(ctx, writerID)
	if err != nil {
		slog.Error("Failed loading writer for assignment notice", "writer_id", writerID, "err", err)
		return
	}

	err = s.notificationManager.Send(notification.OrderAssignedNotice, notification.NotificationData{
		To: writer.Email,
		Data: map[string]string{
			"Name":        writer.DisplayName(),
			"OrderNumber": o.Number,
			"Link":        fmt.Sprintf("%s/orders/%s", s.notificationManager.BaseUrl, o.ID),
		},
	})
	if err != nil {
		slog.Error("Failed sending assignment notice", "order_id", orderID, "err", err)
	}
}
