package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusworks/platform/pkg/identity"
)

const orderColumns = `id, order_number, student_id, writer_id, category_id, title,
	instructions, word_count, academic_level, deadline_days, total_price,
	status, payment_status, created_at, updated_at`

// PostgresOrderRepository implements Repository backed by PostgreSQL.
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// Create persists a new order.
func (r *PostgresOrderRepository) Create(ctx context.Context, o Order) (Order, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	query := `INSERT INTO orders (id, order_number, student_id, writer_id, category_id,
			title, instructions, word_count, academic_level, deadline_days,
			total_price, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING ` + orderColumns

	row := r.pool.QueryRow(ctx, query,
		o.ID, o.Number, o.StudentID, o.WriterID, o.CategoryID,
		o.Title, o.Instructions, o.WordCount, o.AcademicLevel, o.DeadlineDays,
		o.TotalPrice, o.Status, o.PaymentStatus)

	created, err := scanOrder(row)
	if err != nil {
		return Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	return created, nil
}

// GetByID returns the order, or ErrNotFound.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// ListByStudent returns the student's orders, newest first.
func (r *PostgresOrderRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE student_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, studentID)
}

// ListByWriter returns the writer's assigned orders, newest first.
func (r *PostgresOrderRepository) ListByWriter(ctx context.Context, writerID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE writer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, writerID)
}

// AssignWriter sets the writer and moves the order to in_progress.
func (r *PostgresOrderRepository) AssignWriter(ctx context.Context, orderID, writerID uuid.UUID) error {
	query := `UPDATE orders SET writer_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, writerID, StatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to assign writer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves the order to the given status.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates dashboard counters in a single scan.
func (r *PostgresOrderRepository) Stats(ctx context.Context, identityID uuid.UUID, role identity.Role) (Stats, error) {
	var stats Stats

	if role == identity.RoleAdmin {
		query := `SELECT COUNT(*),
				COUNT(*) FILTER (WHERE status = 'pending'),
				COUNT(*) FILTER (WHERE status IN ('pending', 'in_progress')),
				COUNT(*) FILTER (WHERE status = 'completed'),
				COALESCE(SUM(total_price) FILTER (WHERE payment_status = 'paid'), 0)
			FROM orders`
		err := r.pool.QueryRow(ctx, query).Scan(&stats.TotalOrders, &stats.PendingOrders,
			&stats.ActiveOrders, &stats.CompletedOrders, &stats.TotalRevenue)
		if err != nil {
			return Stats{}, fmt.Errorf("failed to get order stats: %w", err)
		}
		return stats, nil
	}

	ownerColumn := "student_id"
	if role == identity.RoleWriter {
		ownerColumn = "writer_id"
	}
	query := `SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status IN ('pending', 'in_progress')),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM orders WHERE ` + ownerColumn + ` = $1`
	err := r.pool.QueryRow(ctx, query, identityID).Scan(&stats.TotalOrders,
		&stats.PendingOrders, &stats.ActiveOrders, &stats.CompletedOrders)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get order stats: %w", err)
	}
	return stats, nil
}

// GetCategory returns the pricing category, or ErrCategoryNotFound.
func (r *PostgresOrderRepository) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	query := `SELECT id, name, base_price FROM categories WHERE id = $1`

	var c Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.BasePrice)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *PostgresOrderRepository) list(ctx context.Context, query string, arg any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Number, &o.StudentID, &o.WriterID, &o.CategoryID,
		&o.Title, &o.Instructions, &o.WordCount, &o.AcademicLevel, &o.DeadlineDays,
		&o.TotalPrice, &o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
