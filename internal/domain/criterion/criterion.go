// Package criterion implements the purchase-condition checks promotions are
// gated on: minimum amount, minimum quantity, quantity and amount ranges, and
// their tag-scoped counterparts with nested tag-criteria sub-rules.
package criterion

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// Kind discriminates the closed criterion variant family.
type Kind string

const (
	MinimumPurchaseAmount   Kind = "minimum_purchase_amount"
	MinimumPurchaseQty      Kind = "minimum_purchase_qty"
	PurchaseQtyBetween      Kind = "purchase_qty_between"
	PurchaseAmountBetween   Kind = "purchase_amount_between"
	MinimumPurchaseQtyByTag Kind = "minimum_purchase_qty_by_tag"
	PurchaseQtyBetweenByTag Kind = "purchase_qty_between_by_tag"
)

// Criterion is one purchase condition. Only the fields relevant to its Kind
// are set; evaluation is a switch over the Kind.
type Criterion struct {
	Kind Kind

	Amount     decimal.Decimal // minimum_purchase_amount
	FromAmount decimal.Decimal // purchase_amount_between
	ToAmount   decimal.Decimal

	Qty     uom.Quantity // minimum qty variants
	FromQty uom.Quantity // between qty variants
	ToQty   uom.Quantity
	UomType uom.Type

	Tag         tag.Tag      // tag-scoped variants
	TagCriteria *TagCriteria // optional compound sub-rule
}

// ItemPurchase is the buyer's purchased quantity of one item variant, in base
// units.
type ItemPurchase struct {
	ItemID string
	Qty    uom.Quantity
}

// TagPurchase is the buyer's aggregate purchase under one tag: total base-unit
// quantity and the distinct item variants contributing to it.
type TagPurchase struct {
	Tag   tag.Tag
	Qty   uom.Quantity
	Items []ItemPurchase
}

// Comparator carries the purchase data a criterion is evaluated against. The
// amount/qty fields serve the non-tag variants; tag variants consume the
// purchase summaries plus the item's UOM conversion.
type Comparator struct {
	Amount        decimal.Decimal
	Qty           uom.Quantity
	TagPurchases  []TagPurchase
	ItemPurchases map[string]ItemPurchase
	Conversion    *uom.Conversion
}

// Met reports whether the comparator satisfies the criterion. All thresholds
// are inclusive. Evaluation is total and side-effect-free; an unknown Kind is
// the only error.
func (c Criterion) Met(cmp Comparator) (bool, error) {
	switch c.Kind {
	case MinimumPurchaseAmount:
		return cmp.Amount.GreaterThanOrEqual(c.Amount), nil
	case MinimumPurchaseQty:
		return cmp.Qty >= c.Qty, nil
	case PurchaseQtyBetween:
		return cmp.Qty >= c.FromQty && cmp.Qty <= c.ToQty, nil
	case PurchaseAmountBetween:
		return cmp.Amount.GreaterThanOrEqual(c.FromAmount) && cmp.Amount.LessThanOrEqual(c.ToAmount), nil
	case MinimumPurchaseQtyByTag:
		return c.metByTag(cmp, func(q uom.Quantity) bool { return q >= c.Qty }), nil
	case PurchaseQtyBetweenByTag:
		return c.metByTag(cmp, func(q uom.Quantity) bool { return q >= c.FromQty && q <= c.ToQty }), nil
	default:
		return false, errors.Errorf("unsupported criterion kind: %q", c.Kind)
	}
}

// metByTag scans the per-tag purchase summaries for entries carrying the
// criterion's tag; the first candidate that clears the quantity predicate and
// the attached tag criteria satisfies the criterion. A tag absent from the
// summaries never matches.
func (c Criterion) metByTag(cmp Comparator, pred func(uom.Quantity) bool) bool {
	for i := range cmp.TagPurchases {
		tp := &cmp.TagPurchases[i]
		if tp.Tag != c.Tag {
			continue
		}
		if !pred(toTier(tp.Qty, c.UomType, cmp.Conversion)) {
			continue
		}
		if c.TagCriteria != nil {
			included := findTagPurchase(cmp.TagPurchases, c.TagCriteria.IncludedTag)
			if !c.TagCriteria.met(tp, cmp.ItemPurchases, cmp.Conversion, included) {
				continue
			}
		}
		return true
	}
	return false
}

// toTier converts a base-unit quantity into the criterion's declared UOM
// tier. Without a conversion the quantity is compared raw.
func toTier(q uom.Quantity, t uom.Type, conv *uom.Conversion) uom.Quantity {
	if conv == nil {
		return q
	}
	switch t {
	case uom.Pack:
		return uom.ToPack(q, conv.Pack)
	case uom.Intermediate:
		return uom.ToIntermediate(q, conv.Base)
	default:
		return q
	}
}

func findTagPurchase(purchases []TagPurchase, t *tag.Tag) *TagPurchase {
	if t == nil {
		return nil
	}
	for i := range purchases {
		if purchases[i].Tag == *t {
			return &purchases[i]
		}
	}
	return nil
}
