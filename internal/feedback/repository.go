package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*Feedback, error)
	SearchByProductName(ctx context.Context, productName string, limit, page int32) ([]*Feedback, int64, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feedbacks (
			id, customer_name, customer_phone_number, content,
			product_id, product_name, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`,
		f.ID, f.CustomerName, f.CustomerPhoneNumber, f.Content,
		f.ProductID, f.ProductName,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	var f Feedback
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_name, customer_phone_number, content,
		       product_id, product_name, created_at
		FROM feedbacks
		WHERE id = $1
	`, id).Scan(
		&f.ID, &f.CustomerName, &f.CustomerPhoneNumber, &f.Content,
		&f.ProductID, &f.ProductName, &f.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}

	return &f, nil
}

func (r *repository) SearchByProductName(
	ctx context.Context,
	productName string,
	limit, page int32,
) ([]*Feedback, int64, error) {

	offset := (page - 1) * limit

	whereClause := ""
	args := []any{}
	if productName != "" {
		whereClause = " WHERE product_name ILIKE $1"
		args = append(args, "%"+productName+"%")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedbacks"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feedbacks: %w", err)
	}

	query := `
	SELECT id, customer_name, customer_phone_number, content,
	       product_id, product_name, created_at
	FROM feedbacks` + whereClause + `
	ORDER BY created_at DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search feedbacks: %w", err)
	}
	defer rows.Close()

	var feedbacks []*Feedback
	for rows.Next() {
		var f Feedback
		err := rows.Scan(
			&f.ID, &f.CustomerName, &f.CustomerPhoneNumber, &f.Content,
			&f.ProductID, &f.ProductName, &f.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		feedbacks = append(feedbacks, &f)
	}

	return feedbacks, total, rows.Err()
}

func (r *repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM feedbacks WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete feedbacks: %w", err)
	}

	return nil
}
