// Package types provides shared value types.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary amount with full precision.
// Quantities stay float64 (the reconciliation epsilon is defined over
// binary floats); amounts and unit costs use decimal to avoid drift when
// valuations are chained across stocktake periods.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// Prefer NewMoneyFromString where the source is textual.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panicking on error.
// For constants and tests only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns the zero Money value.
func Zero() Money {
	return decimal.Zero
}

// MulQty multiplies a unit price by a float64 quantity.
func MulQty(price Money, qty float64) Money {
	return price.Mul(decimal.NewFromFloat(qty))
}

// DivQty divides an amount by a float64 quantity.
// Callers must guard against zero quantity.
func DivQty(amount Money, qty float64) Money {
	return amount.Div(decimal.NewFromFloat(qty))
}
