package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order has no line items")
	ErrInvalidStatus = errors.New("invalid order status")
)
