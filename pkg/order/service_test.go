package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/platform/pkg/identity"
	"github.com/campusworks/platform/pkg/notification"
)

func TestPlace(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	category := repo.SeedCategory(Category{Name: "Essay", BasePrice: 1000})
	svc := NewService(repo)
	ctx := context.Background()

	student := uuid.New()
	placed, err := svc.Place(ctx, PlaceParams{
		StudentID:     student,
		CategoryID:    category.ID,
		Title:         "  Renaissance trade routes  ",
		WordCount:     500,
		AcademicLevel: identity.LevelGraduate,
		DeadlineDays:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renaissance trade routes", placed.Title)
	assert.Equal(t, StatusPending, placed.Status)
	assert.Equal(t, PaymentUnpaid, placed.PaymentStatus)
	assert.Nil(t, placed.WriterID)
	// 1000/250*500 = 2000, *1.5 graduate, *1.5 three-day rush.
	assert.Equal(t, int64(4500), placed.TotalPrice)
	assert.Regexp(t, regexp.MustCompile(`^CWH-\d{4}-[0-9A-Z]{6}$`), placed.Number)

	stored, err := repo.GetByID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, student, stored.StudentID)
}

func TestPlaceValidation(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	category := repo.SeedCategory(Category{Name: "Essay", BasePrice: 1000})
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Place(ctx, PlaceParams{CategoryID: category.ID, WordCount: 0, DeadlineDays: 3})
	assert.ErrorIs(t, err, ErrInvalidWordCount)

	_, err = svc.Place(ctx, PlaceParams{CategoryID: category.ID, WordCount: 250, DeadlineDays: 0})
	assert.ErrorIs(t, err, ErrInvalidDeadline)

	_, err = svc.Place(ctx, PlaceParams{CategoryID: uuid.New(), WordCount: 250, DeadlineDays: 3})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGenerateOrderNumberYear(t *testing.T) {
	number, err := GenerateOrderNumber(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CWH-2025-[0-9A-Z]{6}$`), number)
}

func TestAssignWriterNotifies(t *testing.T) {
	orderRepo := NewInMemoryOrderRepository()
	identRepo := identity.NewInMemoryIdentityRepository()
	mock := notification.NewMockNotifier()
	nm := notification.NewNotificationManager(mock, "http://localhost:3000")

	writerID := uuid.New()
	identRepo.SeedIdentity(identity.Identity{
		ID:        writerID,
		Email:     "writer@example.com",
		FirstName: "Wes",
		LastName:  "Okafor",
		Role:      identity.RoleWriter,
		Status:    identity.StatusActive,
	})

	svc := NewService(orderRepo,
		WithIdentityLookup(identRepo),
		WithNotificationManager(nm))

	o := orderRepo.SeedOrder(Order{Number: "CWH-2025-XYZ789", StudentID: uuid.New(), Status: StatusPending})

	ctx := context.Background()
	require.NoError(t, svc.AssignWriter(ctx, o.ID, writerID))

	stored, err := orderRepo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WriterID)
	assert.Equal(t, writerID, *stored.WriterID)
	assert.Equal(t, StatusInProgress, stored.Status)

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.OrderAssignedNotice, sent[0].Type)
	assert.Equal(t, "writer@example.com", sent[0].To)
	assert.Equal(t, "CWH-2025-XYZ789", sent[0].Data["OrderNumber"])
}

func TestAssignWriterMissingOrder(t *testing.T) {
	svc := NewService(NewInMemoryOrderRepository())
	err := svc.AssignWriter(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsFor(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	svc := NewService(repo)
	ctx := context.Background()

	student := uuid.New()
	writer := uuid.New()
	other := uuid.New()

	repo.SeedOrder(Order{StudentID: student, Status: StatusPending, TotalPrice: 1000, PaymentStatus: PaymentPaid})
	repo.SeedOrder(Order{StudentID: student, WriterID: &writer, Status: StatusInProgress, TotalPrice: 2000, PaymentStatus: PaymentUnpaid})
	repo.SeedOrder(Order{StudentID: student, WriterID: &writer, Status: StatusCompleted, TotalPrice: 3000, PaymentStatus: PaymentPaid})
	repo.SeedOrder(Order{StudentID: other, Status: StatusCompleted, TotalPrice: 500, PaymentStatus: PaymentPaid})

	studentStats, err := svc.StatsFor(ctx, student, identity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 3, studentStats.TotalOrders)
	assert.Equal(t, 2, studentStats.ActiveOrders)
	assert.Equal(t, 1, studentStats.CompletedOrders)

	writerStats, err := svc.StatsFor(ctx, writer, identity.RoleWriter)
	require.NoError(t, err)
	assert.Equal(t, 2, writerStats.TotalOrders)
	assert.Equal(t, 1, writerStats.ActiveOrders)
	assert.Equal(t, 1, writerStats.CompletedOrders)

	adminStats, err := svc.StatsFor(ctx, uuid.New(), identity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 4, adminStats.TotalOrders)
	assert.Equal(t, 1, adminStats.PendingOrders)
	assert.Equal(t, 2, adminStats.CompletedOrders)
	assert.Equal(t, int64(4500), adminStats.TotalRevenue)
}

func TestListFor(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	svc := NewService(repo)
	ctx := context.Background()

	student := uuid.New()
	writer := uuid.New()
	repo.SeedOrder(Order{StudentID: student, Status: StatusPending})
	repo.SeedOrder(Order{StudentID: student, WriterID: &writer, Status: StatusInProgress})
	repo.SeedOrder(Order{StudentID: uuid.New(), Status: StatusPending})

	mine, err := svc.ListFor(ctx, student, identity.RoleStudent)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assigned, err := svc.ListFor(ctx, writer, identity.RoleWriter)
	require.NoError(t, err)
	assert.Len(t, assigned, 1)
}
