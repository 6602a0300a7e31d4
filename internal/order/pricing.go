package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidPricing = errors.New("invalid pricing input")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// EffectiveUnitPrice returns the discount-adjusted unit price:
// sellingPrice * (1 - discountPercentage/100). No rounding happens here;
// presentation layers decide currency formatting.
func EffectiveUnitPrice(sellingPrice, discountPercentage decimal.Decimal) (decimal.Decimal, error) {
	if sellingPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: selling price cannot be negative", ErrInvalidPricing)
	}
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: discount percentage must be between 0 and 100", ErrInvalidPricing)
	}

	return sellingPrice.Mul(one.Sub(discountPercentage.Div(hundred))), nil
}

// LineTotal returns the charged price for one order line:
// effective unit price times quantity.
func LineTotal(sellingPrice, discountPercentage decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidPricing)
	}

	unit, err := EffectiveUnitPrice(sellingPrice, discountPercentage)
	if err != nil {
		return decimal.Zero, err
	}

	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}
