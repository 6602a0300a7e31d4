package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew        OrderStatus = "NEW"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusDelivering OrderStatus = "DELIVERING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCanceled   OrderStatus = "CANCELED"
)

// Valid reports whether s is a known workflow state. Transitions between
// valid states are deliberately unconstrained; the back office moves
// orders freely.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusProcessing, StatusDelivering, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

type Order struct {
	ID                    uuid.UUID
	CustomerID            *uuid.UUID
	CustomerName          string
	EstimatedDeliveryDate *time.Time
	Note                  *string
	TotalPrice            decimal.Decimal
	Status                OrderStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Items                 []OrderItem
}

// OrderItem carries the product snapshot taken at order time. The four
// Product* fields are write-once: catalog edits after the order never
// touch them.
type OrderItem struct {
	ID                        uuid.UUID
	OrderID                   uuid.UUID
	ProductID                 uuid.UUID
	ProductName               string
	ProductOrigin             string
	ProductSellingPrice       decimal.Decimal
	ProductDiscountPercentage decimal.Decimal
	Quantity                  int
	Price                     decimal.Decimal
}

type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	CustomerName          string
	CustomerPhone         string
	CustomerAddress       string
	CustomerEmail         string
	Note                  *string
	EstimatedDeliveryDate *time.Time
	Lines                 []OrderLineInput
}

// OrderFilter holds optional search predicates; nil fields are omitted.
type OrderFilter struct {
	CustomerName *string
	Status       *OrderStatus
}

type OrderListResult struct {
	Items      []*Order
	TotalCount int64
	Page       int32
	Size       int32
}
