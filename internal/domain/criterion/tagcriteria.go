package criterion

import (
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// TagCriteriaItem names one item variant that must individually meet the
// per-item minimum.
type TagCriteriaItem struct {
	ID string
}

// TagCriteria is the compound sub-rule attached to tag-scoped criteria. All
// its gates must hold for the owning criterion to match.
type TagCriteria struct {
	MinQty     uom.Quantity
	MinUomType uom.Type

	Items          []TagCriteriaItem
	ItemMinQty     uom.Quantity
	ItemMinUomType uom.Type

	// MinItemCombination is the number of distinct item variants that must be
	// purchased under the tag. When it exceeds len(Items), the surplus must
	// be covered by other items each clearing ItemMinQty.
	MinItemCombination int

	IncludedTag           *tag.Tag
	IncludedTagMinQty     uom.Quantity
	IncludedTagMinUomType uom.Type

	IsRatioBased         bool
	IsItemHasMatchingTag bool
}

// met evaluates the tag criteria against one tag-purchase record. The gates
// run in a fixed priority order and short-circuit on the first failure.
func (tc *TagCriteria) met(
	tp *TagPurchase,
	itemsPurchase map[string]ItemPurchase,
	conv *uom.Conversion,
	includedTagPurchase *TagPurchase,
) bool {
	minQty := toBase(tc.MinQty, tc.MinUomType, conv)
	itemMinQty := toBase(tc.ItemMinQty, tc.ItemMinUomType, conv)

	// Gate 1: total quantity under the tag.
	if tp.Qty < minQty {
		return false
	}

	// Gate 2: quantity under the included tag. Absent purchase counts as
	// zero, so any positive threshold fails.
	var includedQty uom.Quantity
	if includedTagPurchase != nil {
		includedQty = includedTagPurchase.Qty
	}
	if includedQty < toBase(tc.IncludedTagMinQty, tc.IncludedTagMinUomType, conv) {
		return false
	}

	// Gate 3: distinct purchased item variants under the tag.
	if len(tp.Items) < tc.MinItemCombination {
		return false
	}

	// Gate 4: every listed item individually clears the per-item minimum.
	for _, it := range tc.Items {
		if purchasedQty(itemsPurchase, it.ID) < itemMinQty {
			return false
		}
	}

	// Gate 5: when the combination count exceeds the listed items, enough
	// other items under the tag must each clear the per-item minimum.
	if need := tc.MinItemCombination - len(tc.Items); need > 0 {
		listed := listedItemSet(tc.Items)
		others := 0
		for _, ip := range tp.Items {
			if _, ok := listed[ip.ItemID]; ok {
				continue
			}
			if ip.Qty >= itemMinQty {
				others++
			}
		}
		if others < need {
			return false
		}
	}

	if tc.IsRatioBased {
		// Gate 6a: quantity purchased outside the listed items must itself
		// clear the tag minimum.
		if tc.IsItemHasMatchingTag {
			var listedSum uom.Quantity
			for _, it := range tc.Items {
				listedSum = listedSum.Add(purchasedQty(itemsPurchase, it.ID))
			}
			if tp.Qty.SubFloor(listedSum) < minQty {
				return false
			}
		}

		// Gate 6b: quantity from items not also present under the included
		// tag must clear the tag minimum. Skipped when the included tag was
		// not purchased at all.
		if tc.IncludedTag != nil && includedTagPurchase != nil {
			includedIDs := make(map[string]struct{}, len(includedTagPurchase.Items))
			for _, ip := range includedTagPurchase.Items {
				includedIDs[ip.ItemID] = struct{}{}
			}
			var outside uom.Quantity
			for _, ip := range tp.Items {
				if _, ok := includedIDs[ip.ItemID]; !ok {
					outside = outside.Add(ip.Qty)
				}
			}
			if outside < minQty {
				return false
			}
		}
	}

	return true
}

// toBase converts a threshold declared in some UOM tier into base units when
// a conversion is available; otherwise thresholds compare raw.
func toBase(q uom.Quantity, t uom.Type, conv *uom.Conversion) uom.Quantity {
	if conv == nil {
		return q
	}
	return uom.ToBase(q, t, *conv)
}

func purchasedQty(items map[string]ItemPurchase, id string) uom.Quantity {
	return items[id].Qty
}

func listedItemSet(items []TagCriteriaItem) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it.ID] = struct{}{}
	}
	return set
}
