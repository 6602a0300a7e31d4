package catalog

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateProduct  = errors.New("product with this name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidInput covers malformed filter bounds and out-of-range
	// product fields; callers wrap it with detail via fmt.Errorf + %w.
	ErrInvalidInput = errors.New("invalid input")
)
