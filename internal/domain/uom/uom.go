// Package uom holds the quantity and unit-of-measure primitives the pricing
// engine computes with: non-negative quantities in base units, pack-size
// multipliers, sales factors, and conversions between UOM tiers.
package uom

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Type identifies a unit-of-measure tier. BASE is the smallest sellable unit,
// PACK the largest bundling, INTERMEDIATE sits between them.
type Type string

const (
	Base         Type = "BASE"
	Intermediate Type = "INTERMEDIATE"
	Pack         Type = "PACK"
)

// ErrNegativeQuantity is returned when constructing a Quantity from a
// negative value or subtracting past zero.
var ErrNegativeQuantity = errors.New("quantity must not be negative")

// InvalidValueError indicates a PackQty or SalesFactor outside its allowed
// range.
type InvalidValueError struct {
	Field string
	Value int64
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s must be at least 1, got %d", e.Field, e.Value)
}

// Quantity is a non-negative count of base units.
type Quantity int64

// NewQuantity validates v and returns it as a Quantity.
func NewQuantity(v int64) (Quantity, error) {
	if v < 0 {
		return 0, ErrNegativeQuantity
	}
	return Quantity(v), nil
}

// Add returns the sum of two quantities.
func (q Quantity) Add(o Quantity) Quantity {
	return q + o
}

// Sub returns q minus o, or ErrNegativeQuantity when the result would drop
// below zero.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if o > q {
		return 0, ErrNegativeQuantity
	}
	return q - o, nil
}

// SubFloor returns q minus o clamped at zero.
func (q Quantity) SubFloor(o Quantity) Quantity {
	if o > q {
		return 0
	}
	return q - o
}

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool {
	return q == 0
}

// PackQty is the number of base units contained in one unit of a larger UOM
// tier. Always at least 1.
type PackQty int64

// NewPackQty validates v and returns it as a PackQty.
func NewPackQty(v int64) (PackQty, error) {
	if v < 1 {
		return 0, &InvalidValueError{Field: "pack qty", Value: v}
	}
	return PackQty(v), nil
}

// SalesFactor is the minimum sellable increment for a line item: accepted
// quantities must be exact multiples of it. Always at least 1.
type SalesFactor int64

// NewSalesFactor validates v and returns it as a SalesFactor.
func NewSalesFactor(v int64) (SalesFactor, error) {
	if v < 1 {
		return 0, &InvalidValueError{Field: "sales factor", Value: v}
	}
	return SalesFactor(v), nil
}

// Conversion describes how one item's quantity maps across UOM tiers: Base is
// the base-units-per-intermediate multiplier, Pack the base-units-per-pack
// multiplier when the item has a pack tier.
type Conversion struct {
	Base PackQty
	Pack *PackQty
}
