package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fruitshop-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// effectivePriceExpr is the discount-adjusted price used by price filters.
// Price bounds compare against what the customer actually pays.
const effectivePriceExpr = "(p.selling_price * (1 - COALESCE(p.discount_percentage, 0) / 100.0))"

const productColumns = `
	p.id,
	p.name,
	p.origin,
	p.description,
	p.thumbnail_image,
	p.original_price,
	p.selling_price,
	p.discount_percentage,
	p.unit,
	p.stock,
	p.min_unit_to_order,
	p.category_id,
	c.name,
	p.created_at,
	p.updated_at`

type Repository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductByName(ctx context.Context, name string) (*Product, error)
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	CreateCategory(ctx context.Context, name string, thumbnail *string) (*Category, error)
	SearchProducts(ctx context.Context, filter *ProductFilter, limit, page int32, sortBy, direction string) ([]*Product, int64, error)
	NewestProducts(ctx context.Context, n int) ([]*Product, error)
	InsertProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product, removedImageURLs, addedImageURLs []string) error
	DeleteProductsByIDs(ctx context.Context, ids []uuid.UUID) error
	ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) error
	ReduceStockBulk(ctx context.Context, lines []StockLine) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProduct(row scannable) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Origin,
		&p.Description,
		&p.ThumbnailImage,
		&p.OriginalPrice,
		&p.SellingPrice,
		&p.DiscountPercentage,
		&p.Unit,
		&p.Stock,
		&p.MinUnitToOrder,
		&p.CategoryID,
		&p.CategoryName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
	SELECT ` + productColumns + `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE p.id = $1
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if err := r.loadImages(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) GetProductByName(ctx context.Context, name string) (*Product, error) {
	query := `
	SELECT ` + productColumns + `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	WHERE LOWER(p.name) = LOWER($1)
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product by name: %w", err)
	}

	if err := r.loadImages(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *repository) loadImages(ctx context.Context, p *Product) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT image_url FROM product_images WHERE product_id = $1 ORDER BY created_at
	`, p.ID)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return err
		}
		p.Images = append(p.Images, url)
	}

	return rows.Err()
}

func (r *repository) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, thumbnail_image, created_at
		FROM categories
		WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&c.ID, &c.Name, &c.ThumbnailImage, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}

	return &c, nil
}

func (r *repository) CreateCategory(ctx context.Context, name string, thumbnail *string) (*Category, error) {
	c := &Category{
		ID:             uuid.New(),
		Name:           name,
		ThumbnailImage: thumbnail,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, thumbnail_image, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, c.ID, c.Name, c.ThumbnailImage).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return c, nil
}

func (r *repository) SearchProducts(
	ctx context.Context,
	filter *ProductFilter,
	limit, page int32,
	sortBy, direction string,
) ([]*Product, int64, error) {

	offset := (page - 1) * limit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SearchProducts"),
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
		if filter.Name != nil && *filter.Name != "" {
			addCond(fmt.Sprintf("p.name ILIKE $%d", argIndex), "%"+*filter.Name+"%")
		}
		if filter.MinPrice != nil {
			addCond(fmt.Sprintf(effectivePriceExpr+" >= $%d", argIndex), *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			addCond(fmt.Sprintf(effectivePriceExpr+" <= $%d", argIndex), *filter.MaxPrice)
		}
		if filter.CategoryName != nil && *filter.CategoryName != "" {
			addCond(fmt.Sprintf("LOWER(c.name) = LOWER($%d)", argIndex), *filter.CategoryName)
		}
		if filter.Origin != nil && *filter.Origin != "" {
			addCond(fmt.Sprintf("LOWER(p.origin) = LOWER($%d)", argIndex), *filter.Origin)
		}
	}

	var total int64
	countQuery := `
	SELECT COUNT(*)
	FROM products p
	JOIN categories c ON c.id = p.category_id` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy := productOrderBy(sortBy, direction)

	query := `
	SELECT ` + productColumns + `
	FROM products p
	JOIN categories c ON c.id = p.category_id` + whereClause + `
	ORDER BY ` + orderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to search products", zap.Error(err))
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	log.Debug("products searched", zap.Int("count", len(products)), zap.Int64("total", total))

	return products, total, nil
}

// productOrderBy resolves the sort allow-list. Unknown fields silently fall
// back to newest-first.
func productOrderBy(sortBy, direction string) string {
	dir := "ASC"
	if strings.EqualFold(direction, "desc") {
		dir = "DESC"
	}

	switch sortBy {
	case "name":
		return "p.name " + dir
	case "sellingPrice":
		return "p.selling_price " + dir
	case "stock":
		return "p.stock " + dir
	case "createdAt":
		return "p.created_at " + dir
	default:
		return "p.created_at DESC"
	}
}

func (r *repository) NewestProducts(ctx context.Context, n int) ([]*Product, error) {
	query := `
	SELECT ` + productColumns + `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	ORDER BY p.created_at DESC
	LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("newest products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) InsertProduct(ctx context.Context, p *Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (
			id, name, origin, description, thumbnail_image,
			original_price, selling_price, discount_percentage,
			unit, stock, min_unit_to_order, category_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
		RETURNING created_at, updated_at
	`,
		p.ID, p.Name, p.Origin, p.Description, p.ThumbnailImage,
		p.OriginalPrice, p.SellingPrice, p.DiscountPercentage,
		p.Unit, p.Stock, p.MinUnitToOrder, p.CategoryID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	for _, url := range p.Images {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, image_url, created_at)
			VALUES ($1, $2, $3, NOW())
		`, uuid.New(), p.ID, url)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) UpdateProduct(
	ctx context.Context,
	p *Product,
	removedImageURLs, addedImageURLs []string,
) error {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1,
		    origin = $2,
		    description = $3,
		    thumbnail_image = $4,
		    original_price = $5,
		    selling_price = $6,
		    discount_percentage = $7,
		    unit = $8,
		    stock = $9,
		    min_unit_to_order = $10,
		    category_id = $11,
		    updated_at = NOW()
		WHERE id = $12
	`,
		p.Name, p.Origin, p.Description, p.ThumbnailImage,
		p.OriginalPrice, p.SellingPrice, p.DiscountPercentage,
		p.Unit, p.Stock, p.MinUnitToOrder, p.CategoryID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	if len(removedImageURLs) > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM product_images
			WHERE product_id = $1 AND image_url = ANY($2)
		`, p.ID, pq.Array(removedImageURLs))
		if err != nil {
			return fmt.Errorf("remove product images: %w", err)
		}
	}

	for _, url := range addedImageURLs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, image_url, created_at)
			VALUES ($1, $2, $3, NOW())
		`, uuid.New(), p.ID, url)
		if err != nil {
			return fmt.Errorf("add product image: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) DeleteProductsByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	// product_images rows go with their product via ON DELETE CASCADE
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM products WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}

	return nil
}

func (r *repository) ReduceStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ReduceStockTx(ctx, tx, productID, quantity); err != nil {
		return err
	}

	return tx.Commit()
}

// ReduceStockBulk applies a guarded decrement per line in one
// transaction: any failing line rolls back every decrement.
func (r *repository) ReduceStockBulk(ctx context.Context, lines []StockLine) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, line := range lines {
		if err := ReduceStockTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ReduceStockTx decrements a product's stock inside the caller's
// transaction. The guard clause keeps stock from ever going negative under
// concurrent orders: zero rows affected means either a missing product or
// not enough stock, distinguished by a follow-up lookup.
func ReduceStockTx(ctx context.Context, tx *sql.Tx, productID uuid.UUID, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`, quantity, productID)
	if err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)
	`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return ErrProductNotFound
	}

	return ErrInsufficientStock
}
