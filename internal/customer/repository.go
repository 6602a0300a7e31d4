package customer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const customerColumns = `
	id,
	name,
	phone_number,
	address,
	email,
	total_orders,
	last_order_date,
	created_at,
	updated_at`

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// FindOneByNameContaining returns the first customer whose name
	// contains the given fragment, case-insensitively, or nil when there
	// is no match.
	FindOneByNameContaining(ctx context.Context, name string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Search(ctx context.Context, name string, limit, page int32, sortBy, direction string) ([]*Customer, int64, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	// RecordOrder bumps the denormalized order aggregates. last_order_date
	// never decreases, even if called with out-of-order timestamps.
	RecordOrder(ctx context.Context, customerID uuid.UUID, orderCreatedAt time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.PhoneNumber,
		&c.Address,
		&c.Email,
		&c.TotalOrders,
		&c.LastOrderDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return c, nil
}

func (r *repository) FindOneByNameContaining(ctx context.Context, name string) (*Customer, error) {
	query := `
	SELECT ` + customerColumns + `
	FROM customers
	WHERE name ILIKE $1
	ORDER BY created_at
	LIMIT 1
	`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, "%"+name+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer by name: %w", err)
	}

	return c, nil
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := InsertCustomerTx(ctx, tx, c); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertCustomerTx inserts a customer inside the caller's transaction, so
// order creation can commit a brand-new customer atomically with the order.
func InsertCustomerTx(ctx context.Context, tx *sql.Tx, c *Customer) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO customers (
			id, name, phone_number, address, email,
			total_orders, last_order_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,0,NULL,NOW(),NOW())
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.PhoneNumber, c.Address, c.Email).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	c.TotalOrders = 0
	c.LastOrderDate = nil

	return nil
}

func (r *repository) Search(
	ctx context.Context,
	name string,
	limit, page int32,
	sortBy, direction string,
) ([]*Customer, int64, error) {

	offset := (page - 1) * limit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SearchCustomers"),
		zap.Int32("limit", limit),
		zap.Int32("page", page),
	)

	whereClause := ""
	args := []any{}
	if name != "" {
		whereClause = " WHERE name ILIKE $1"
		args = append(args, "%"+name+"%")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers"+whereClause, args...).Scan(&total); err != nil {
		log.Error("failed to count customers", zap.Error(err))
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	orderBy := customerOrderBy(sortBy, direction)

	query := `SELECT ` + customerColumns + ` FROM customers` + whereClause +
		` ORDER BY ` + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to search customers", zap.Error(err))
		return nil, 0, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func customerOrderBy(sortBy, direction string) string {
	dir := "ASC"
	if strings.EqualFold(direction, "desc") {
		dir = "DESC"
	}

	switch sortBy {
	case "totalOrders":
		return "total_orders " + dir
	case "createdAt":
		return "created_at " + dir
	default:
		return "created_at DESC"
	}
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	// orders keep their snapshots; customer_id goes NULL via the FK
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM customers WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete customers: %w", err)
	}

	return nil
}

func (r *repository) RecordOrder(ctx context.Context, customerID uuid.UUID, orderCreatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET total_orders = total_orders + 1,
		    last_order_date = GREATEST(COALESCE(last_order_date, $2), $2),
		    updated_at = NOW()
		WHERE id = $1
	`, customerID, orderCreatedAt)
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}
