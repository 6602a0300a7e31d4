package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit is the sales unit a product is priced in.
type Unit string

const (
	UnitKG  Unit = "KG"
	UnitBox Unit = "BOX"
)

type Category struct {
	ID             uuid.UUID
	Name           string
	ThumbnailImage *string
	CreatedAt      time.Time
}

type Product struct {
	ID                 uuid.UUID
	Name               string
	Origin             string
	Description        *string
	ThumbnailImage     *string
	Images             []string
	OriginalPrice      decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	Unit               Unit
	Stock              int
	MinUnitToOrder     int
	CategoryID         uuid.UUID
	CategoryName       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProductFilter holds optional search predicates. Nil fields are omitted
// from the query entirely; set fields are AND-combined.
type ProductFilter struct {
	Name         *string
	Origin       *string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	CategoryName *string
}

type ProductListResult struct {
	Items      []*Product
	TotalCount int64
	Page       int32
	Size       int32
}

type CreateProductInput struct {
	Name               string
	Origin             string
	Description        *string
	OriginalPrice      decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	Unit               Unit
	Stock              int
	MinUnitToOrder     int
	CategoryName       string
	Thumbnail          []byte
	Images             [][]byte
}

type UpdateProductInput struct {
	ID                 uuid.UUID
	Name               string
	Origin             string
	Description        *string
	OriginalPrice      decimal.Decimal
	SellingPrice       decimal.Decimal
	DiscountPercentage decimal.Decimal
	Unit               Unit
	Stock              int
	MinUnitToOrder     int
	CategoryName       string
	Thumbnail          []byte
	RemovedImageURLs   []string
	NewImages          [][]byte
}

// StockLine is one product/quantity pair for bulk stock reduction.
type StockLine struct {
	ProductID uuid.UUID
	Quantity  int
}
