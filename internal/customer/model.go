package customer

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber string
	Address     string
	Email       string
	// TotalOrders and LastOrderDate are denormalized aggregates mutated
	// only through RecordOrder, after the owning order has committed.
	TotalOrders   int
	LastOrderDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateCustomerInput struct {
	Name        string
	PhoneNumber string
	Address     string
	Email       string
}

type CustomerListResult struct {
	Items      []*Customer
	TotalCount int64
	Page       int32
	Size       int32
}
