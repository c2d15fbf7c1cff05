package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/platform/pkg/identity"
)

// Status tracks an order through its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusRevision   Status = "revision"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks whether the student has paid.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Order is a brokered piece of work. StudentID is the ordering account;
// WriterID is nil until an admin assigns the work.
type Order struct {
	ID            uuid.UUID
	Number        string
	StudentID     uuid.UUID
	WriterID      *uuid.UUID
	CategoryID    uuid.UUID
	Title         string
	Instructions  string
	WordCount     int
	AcademicLevel identity.AcademicLevel
	DeadlineDays  int
	TotalPrice    int64 // cents
	Status        Status
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category prices a kind of work. BasePrice is cents per page of 250 words.
type Category struct {
	ID        uuid.UUID
	Name      string
	BasePrice int64 // cents per 250 words
}

// Stats summarizes orders for a dashboard. Revenue is only populated for
// admins; ActiveOrders only for students and writers.
type Stats struct {
	TotalOrders     int
	PendingOrders   int
	ActiveOrders    int
	CompletedOrders int
	TotalRevenue    int64 // cents, paid orders only
}
