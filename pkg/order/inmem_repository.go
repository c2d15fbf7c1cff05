package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/identity"
)

// InMemoryOrderRepository implements Repository using in-memory storage.
type InMemoryOrderRepository struct {
	mu         sync.RWMutex
	orders     map[uuid.UUID]Order
	categories map[uuid.UUID]Category
}

// NewInMemoryOrderRepository creates a new in-memory order repository.
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders:     make(map[uuid.UUID]Order),
		categories: make(map[uuid.UUID]Category),
	}
}

// Create persists a new order.
func (r *InMemoryOrderRepository) Create(ctx context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	r.orders[o.ID] = o
	return o, nil
}

// GetByID returns the order, or ErrNotFound.
func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// ListByStudent returns the student's orders, newest first.
func (r *InMemoryOrderRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Order
	for _, o := range r.orders {
		if o.StudentID == studentID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByWriter returns the writer's assigned orders, newest first.
func (r *InMemoryOrderRepository) ListByWriter(ctx context.Context, writerID uuid.UUID) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Order
	for _, o := range r.orders {
		if o.WriterID != nil && *o.WriterID == writerID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// AssignWriter sets the writer and moves the order to in_progress.
func (r *InMemoryOrderRepository) AssignWriter(ctx context.Context, orderID, writerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.WriterID = &writerID
	o.Status = StatusInProgress
	o.UpdatedAt = time.Now()
	r.orders[orderID] = o
	return nil
}

// UpdateStatus moves the order to the given status.
func (r *InMemoryOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[orderID] = o
	return nil
}

// Stats aggregates dashboard counters.
func (r *InMemoryOrderRepository) Stats(ctx context.Context, identityID uuid.UUID, role identity.Role) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats Stats
	for _, o := range r.orders {
		if role != identity.RoleAdmin && !ordersBelongTo(o, identityID, role) {
			continue
		}
		stats.TotalOrders++
		switch o.Status {
		case StatusPending:
			stats.PendingOrders++
			stats.ActiveOrders++
		case StatusInProgress:
			stats.ActiveOrders++
		case StatusCompleted:
			stats.CompletedOrders++
		}
		if role == identity.RoleAdmin && o.PaymentStatus == PaymentPaid {
			stats.TotalRevenue += o.TotalPrice
		}
	}
	return stats, nil
}

// GetCategory returns the pricing category, or ErrCategoryNotFound.
func (r *InMemoryOrderRepository) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

// SeedCategory adds a category directly (for testing/initialization).
func (r *InMemoryOrderRepository) SeedCategory(c Category) Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categories[c.ID] = c
	return c
}

// SeedOrder adds an order directly (for testing/initialization).
func (r *InMemoryOrderRepository) SeedOrder(o Order) Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.orders[o.ID] = o
	return o
}

func ordersBelongTo(o Order, identityID uuid.UUID, role identity.Role) bool {
	if role == identity.RoleWriter {
		return o.WriterID != nil && *o.WriterID == identityID
	}
	return o.StudentID == identityID
}

func sortNewestFirst(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
