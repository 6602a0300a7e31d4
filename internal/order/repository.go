package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fruitshop-be/internal/catalog"
	"fruitshop-be/internal/customer"
	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const orderColumns = `
	o.id,
	o.customer_id,
	COALESCE(c.name, ''),
	o.estimated_delivery_date,
	o.note,
	o.total_price,
	o.status,
	o.created_at,
	o.updated_at`

const itemColumns = `
	id,
	order_id,
	product_id,
	product_name,
	product_origin,
	product_selling_price,
	product_discount_percentage,
	quantity,
	price`

type Repository interface {
	// CreateOrderTx persists the order, its items, the optional brand-new
	// customer, and the per-line stock decrements as one transaction.
	CreateOrderTx(ctx context.Context, o *Order, newCustomer *customer.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Search(ctx context.Context, filter *OrderFilter, limit, page int32, sortBy, direction string) ([]*Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order, newCustomer *customer.Customer) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", o.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if newCustomer != nil {
		if err := customer.InsertCustomerTx(ctx, tx, newCustomer); err != nil {
			return err
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, customer_id, estimated_delivery_date, note,
			total_price, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`,
		o.ID, o.CustomerID, o.EstimatedDeliveryDate, o.Note,
		o.TotalPrice, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name, product_origin,
				product_selling_price, product_discount_percentage,
				quantity, price
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.ProductOrigin, item.ProductSellingPrice,
			item.ProductDiscountPercentage, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		if err := catalog.ReduceStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			log.Warn("stock decrement rejected",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			return err
		}
	}

	return tx.Commit()
}

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.CustomerName,
		&o.EstimatedDeliveryDate,
		&o.Note,
		&o.TotalPrice,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id
	WHERE o.id = $1
	`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.fetchItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	return o, nil
}

func (r *repository) fetchItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_name
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("fetch order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[uuid.UUID][]OrderItem, len(orderIDs))
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductOrigin,
			&item.ProductSellingPrice,
			&item.ProductDiscountPercentage,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, err
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	return byOrder, rows.Err()
}

func (r *repository) Search(
	ctx context.Context,
	filter *OrderFilter,
	limit, page int32,
	sortBy, direction string,
) ([]*Order, int64, error) {

	offset := (page - 1) * limit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SearchOrders"),
		zap.Int32("limit", limit),
		zap.Int32("page", page),
	)

	whereClause := ""
	args := []any{}
	argIndex := 1

	addCond := func(cond string, arg any) {
		if whereClause == "" {
			whereClause = " WHERE " + cond
		} else {
			whereClause += " AND " + cond
		}
		args = append(args, arg)
		argIndex++
	}

	if filter != nil {
		if filter.CustomerName != nil && *filter.CustomerName != "" {
			addCond(fmt.Sprintf("c.name ILIKE $%d", argIndex), "%"+*filter.CustomerName+"%")
		}
		if filter.Status != nil {
			addCond(fmt.Sprintf("o.status = $%d", argIndex), *filter.Status)
		}
	}

	var total int64
	countQuery := `
	SELECT COUNT(*)
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	orderBy := orderOrderBy(sortBy, direction)

	query := `
	SELECT ` + orderColumns + `
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id` + whereClause + `
	ORDER BY ` + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to search orders", zap.Error(err))
		return nil, 0, fmt.Errorf("search orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		items, err := r.fetchItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, o := range orders {
			o.Items = items[o.ID]
		}
	}

	return orders, total, nil
}

func orderOrderBy(sortBy, direction string) string {
	dir := "ASC"
	if strings.EqualFold(direction, "desc") {
		dir = "DESC"
	}

	switch sortBy {
	case "createdAt":
		return "o.created_at " + dir
	case "totalPrice":
		return "o.total_price " + dir
	case "status":
		return "o.status " + dir
	default:
		return "o.created_at DESC"
	}
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	// order_items go with their order via ON DELETE CASCADE
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM orders WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}

	return nil
}
