// Package promotion defines promotion conditions and the benefits a matched
// condition yields: stacked discount/coin lines, free-product grants, and
// their UOM-scaled amount semantics.
package promotion

import (
	"github.com/shopspring/decimal"

	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

var hundred = decimal.NewFromInt(100)

// BenefitType selects between percentage and fixed-amount benefit lines.
type BenefitType string

const (
	Percentage BenefitType = "PERCENTAGE"
	Amount     BenefitType = "AMOUNT"
)

// BenefitLine is one discount or coin entry. Fixed amounts declared against a
// larger UOM tier are scaled down to a per-base-unit amount via the item's
// conversion.
type BenefitLine struct {
	Type         BenefitType
	Value        decimal.Decimal
	ScaleUomType uom.Type
}

// Benefit is the full reward attached to a matched condition. Discount and
// Coin are ordered lists applied sequentially against the residual price.
type Benefit struct {
	Discount []BenefitLine
	Coin     []BenefitLine
	Product  *FreeProductBenefit

	// MaxQty caps the quantity the monetary benefit applies to, declared in
	// MaxUomType units.
	MaxQty     uom.Quantity
	MaxUomType uom.Type
}

// FreeProductBenefit grants free units of a product in a buy-X-get-Y ratio,
// scaled to the purchased quantity and capped at MaxQty free units. MaxQty of
// zero means uncapped.
type FreeProductBenefit struct {
	ProductID string
	Ratio     uom.Ratio
	MaxQty    uom.Quantity
}

// Resolve returns the free quantity granted for the purchased base-unit
// quantity.
func (b FreeProductBenefit) Resolve(purchased uom.Quantity) uom.Quantity {
	if b.Ratio.X <= 0 || b.Ratio.Y <= 0 || int64(purchased) < b.Ratio.X {
		return 0
	}
	limit := int64(b.MaxQty)
	if limit <= 0 {
		limit = int64(purchased) / b.Ratio.X * b.Ratio.Y
	}
	scaled := uom.MaxScale(int64(purchased), limit, b.Ratio)
	if scaled.Y > limit {
		return uom.Quantity(limit)
	}
	return uom.Quantity(scaled.Y)
}

// ResolveMonetaryBenefit computes the monetary value of a single benefit
// line against a price. Percentage lines take their share of the price; fixed
// amounts are scaled by the declared UOM tier when a conversion is supplied
// and used raw otherwise. Unresolvable input yields zero, never an error.
func ResolveMonetaryBenefit(line BenefitLine, price decimal.Decimal, conv *uom.Conversion) decimal.Decimal {
	switch line.Type {
	case Percentage:
		return price.Mul(line.Value).Div(hundred)
	case Amount:
		if conv == nil {
			return line.Value
		}
		switch line.ScaleUomType {
		case uom.Pack:
			contains := uom.PackQty(1)
			if conv.Pack != nil {
				contains = *conv.Pack
			}
			return line.Value.Div(decimal.NewFromInt(int64(contains)))
		case uom.Intermediate:
			return line.Value.Div(decimal.NewFromInt(int64(conv.Base)))
		default:
			return line.Value
		}
	default:
		return decimal.Zero
	}
}

// ResolveOfferedPrice returns price minus discount, floored at zero.
func ResolveOfferedPrice(price, discount decimal.Decimal) decimal.Decimal {
	if discount.GreaterThan(price) {
		return decimal.Zero
	}
	return price.Sub(discount)
}

// StackLines applies an ordered list of benefit lines sequentially: each line
// is resolved against the price remaining after all previous lines, and the
// accumulated total never exceeds the price. A residual of zero stops the
// chain early.
func StackLines(lines []BenefitLine, price decimal.Decimal, conv *uom.Conversion) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		residual := ResolveOfferedPrice(price, total)
		if residual.IsZero() {
			break
		}
		total = total.Add(ResolveMonetaryBenefit(line, residual, conv))
	}
	return decimal.Min(total, price)
}
