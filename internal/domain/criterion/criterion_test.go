package criterion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

var brandAcme = tag.Tag{Group: "brand", Value: "acme"}

func TestMet_AmountVariants(t *testing.T) {
	tests := []struct {
		name string
		c    Criterion
		cmp  Comparator
		want bool
	}{
		{
			name: "minimum amount met inclusive",
			c:    Criterion{Kind: MinimumPurchaseAmount, Amount: decimal.NewFromInt(100)},
			cmp:  Comparator{Amount: decimal.NewFromInt(100)},
			want: true,
		},
		{
			name: "minimum amount below threshold",
			c:    Criterion{Kind: MinimumPurchaseAmount, Amount: decimal.NewFromInt(100)},
			cmp:  Comparator{Amount: decimal.RequireFromString("99.99")},
			want: false,
		},
		{
			name: "amount between inclusive lower bound",
			c:    Criterion{Kind: PurchaseAmountBetween, FromAmount: decimal.NewFromInt(50), ToAmount: decimal.NewFromInt(150)},
			cmp:  Comparator{Amount: decimal.NewFromInt(50)},
			want: true,
		},
		{
			name: "amount between inclusive upper bound",
			c:    Criterion{Kind: PurchaseAmountBetween, FromAmount: decimal.NewFromInt(50), ToAmount: decimal.NewFromInt(150)},
			cmp:  Comparator{Amount: decimal.NewFromInt(150)},
			want: true,
		},
		{
			name: "amount above range",
			c:    Criterion{Kind: PurchaseAmountBetween, FromAmount: decimal.NewFromInt(50), ToAmount: decimal.NewFromInt(150)},
			cmp:  Comparator{Amount: decimal.RequireFromString("150.01")},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Met(tt.cmp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMet_QtyVariants(t *testing.T) {
	tests := []struct {
		name string
		c    Criterion
		qty  uom.Quantity
		want bool
	}{
		{name: "minimum qty met", c: Criterion{Kind: MinimumPurchaseQty, Qty: 10}, qty: 10, want: true},
		{name: "minimum qty unmet", c: Criterion{Kind: MinimumPurchaseQty, Qty: 10}, qty: 9, want: false},
		{name: "between met", c: Criterion{Kind: PurchaseQtyBetween, FromQty: 5, ToQty: 10}, qty: 7, want: true},
		{name: "between below", c: Criterion{Kind: PurchaseQtyBetween, FromQty: 5, ToQty: 10}, qty: 4, want: false},
		{name: "between above", c: Criterion{Kind: PurchaseQtyBetween, FromQty: 5, ToQty: 10}, qty: 11, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Met(Comparator{Qty: tt.qty})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMet_UnknownKind(t *testing.T) {
	_, err := Criterion{Kind: "bogus"}.Met(Comparator{})
	require.Error(t, err)
}

func TestMet_ByTag(t *testing.T) {
	twelve := uom.PackQty(12)
	conv := &uom.Conversion{Base: 4, Pack: &twelve}

	tests := []struct {
		name string
		c    Criterion
		cmp  Comparator
		want bool
	}{
		{
			name: "tag absent from purchases never matches",
			c:    Criterion{Kind: MinimumPurchaseQtyByTag, Tag: brandAcme, Qty: 0, UomType: uom.Base},
			cmp:  Comparator{TagPurchases: []TagPurchase{{Tag: tag.Tag{Group: "brand", Value: "other"}, Qty: 100}}},
			want: false,
		},
		{
			name: "raw comparison without conversion",
			c:    Criterion{Kind: MinimumPurchaseQtyByTag, Tag: brandAcme, Qty: 10, UomType: uom.Base},
			cmp:  Comparator{TagPurchases: []TagPurchase{{Tag: brandAcme, Qty: 10}}},
			want: true,
		},
		{
			name: "pack tier conversion floors",
			c:    Criterion{Kind: MinimumPurchaseQtyByTag, Tag: brandAcme, Qty: 2, UomType: uom.Pack},
			cmp:  Comparator{TagPurchases: []TagPurchase{{Tag: brandAcme, Qty: 23}}, Conversion: conv},
			want: false, // 23/12 = 1 pack
		},
		{
			name: "pack tier conversion met",
			c:    Criterion{Kind: MinimumPurchaseQtyByTag, Tag: brandAcme, Qty: 2, UomType: uom.Pack},
			cmp:  Comparator{TagPurchases: []TagPurchase{{Tag: brandAcme, Qty: 24}}, Conversion: conv},
			want: true,
		},
		{
			name: "intermediate tier conversion",
			c:    Criterion{Kind: PurchaseQtyBetweenByTag, Tag: brandAcme, FromQty: 2, ToQty: 3, UomType: uom.Intermediate},
			cmp:  Comparator{TagPurchases: []TagPurchase{{Tag: brandAcme, Qty: 11}}, Conversion: conv},
			want: true, // 11/4 = 2
		},
		{
			name: "second candidate with same tag satisfies",
			c:    Criterion{Kind: MinimumPurchaseQtyByTag, Tag: brandAcme, Qty: 10, UomType: uom.Base},
			cmp: Comparator{TagPurchases: []TagPurchase{
				{Tag: brandAcme, Qty: 5},
				{Tag: brandAcme, Qty: 12},
			}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Met(tt.cmp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMet_ByTagWithTagCriteria(t *testing.T) {
	c := Criterion{
		Kind:    MinimumPurchaseQtyByTag,
		Tag:     brandAcme,
		Qty:     5,
		UomType: uom.Base,
		TagCriteria: &TagCriteria{
			MinQty:     5,
			MinUomType: uom.Base,
			Items:      []TagCriteriaItem{{ID: "A"}},
			ItemMinQty: 5, ItemMinUomType: uom.Base,
			MinItemCombination: 1,
		},
	}

	cmp := Comparator{
		TagPurchases: []TagPurchase{{
			Tag: brandAcme, Qty: 10,
			Items: []ItemPurchase{{ItemID: "A", Qty: 10}},
		}},
		ItemPurchases: map[string]ItemPurchase{"A": {ItemID: "A", Qty: 10}},
	}
	got, err := c.Met(cmp)
	require.NoError(t, err)
	assert.True(t, got)

	// Same purchase but the listed item misses its per-item minimum.
	cmp.ItemPurchases = map[string]ItemPurchase{"A": {ItemID: "A", Qty: 4}}
	got, err = c.Met(cmp)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestTagCriteria_Gates(t *testing.T) {
	includedTag := tag.Tag{Group: "category", Value: "frozen"}

	baseTC := func() *TagCriteria {
		return &TagCriteria{
			MinQty:     5,
			MinUomType: uom.Base,
			Items:      []TagCriteriaItem{{ID: "A"}},
			ItemMinQty: 5, ItemMinUomType: uom.Base,
			MinItemCombination: 2,
		}
	}
	purchase := func(items ...ItemPurchase) *TagPurchase {
		var total uom.Quantity
		for _, ip := range items {
			total = total.Add(ip.Qty)
		}
		return &TagPurchase{Tag: brandAcme, Qty: total, Items: items}
	}
	itemMap := func(tp *TagPurchase) map[string]ItemPurchase {
		m := make(map[string]ItemPurchase, len(tp.Items))
		for _, ip := range tp.Items {
			m[ip.ItemID] = ip
		}
		return m
	}

	t.Run("other item covering the combination passes", func(t *testing.T) {
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 5}, ItemPurchase{ItemID: "B", Qty: 5})
		assert.True(t, baseTC().met(tp, itemMap(tp), nil, nil))
	})

	t.Run("other item below per-item minimum fails", func(t *testing.T) {
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 5}, ItemPurchase{ItemID: "B", Qty: 3})
		assert.False(t, baseTC().met(tp, itemMap(tp), nil, nil))
	})

	t.Run("total below tag minimum fails", func(t *testing.T) {
		tc := baseTC()
		tc.MinQty = 20
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 5}, ItemPurchase{ItemID: "B", Qty: 5})
		assert.False(t, tc.met(tp, itemMap(tp), nil, nil))
	})

	t.Run("positive included-tag minimum fails without included purchase", func(t *testing.T) {
		tc := baseTC()
		tc.IncludedTag = &includedTag
		tc.IncludedTagMinQty = 1
		tc.IncludedTagMinUomType = uom.Base
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 5}, ItemPurchase{ItemID: "B", Qty: 5})
		assert.False(t, tc.met(tp, itemMap(tp), nil, nil))
	})

	t.Run("included-tag minimum met by included purchase", func(t *testing.T) {
		tc := baseTC()
		tc.IncludedTag = &includedTag
		tc.IncludedTagMinQty = 3
		tc.IncludedTagMinUomType = uom.Base
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 5}, ItemPurchase{ItemID: "B", Qty: 5})
		included := &TagPurchase{Tag: includedTag, Qty: 4}
		assert.True(t, tc.met(tp, itemMap(tp), nil, included))
	})

	t.Run("distinct item count below combination fails", func(t *testing.T) {
		tc := baseTC()
		tc.MinItemCombination = 3
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 5}, ItemPurchase{ItemID: "B", Qty: 5})
		assert.False(t, tc.met(tp, itemMap(tp), nil, nil))
	})

	t.Run("thresholds convert to base units", func(t *testing.T) {
		tc := baseTC()
		tc.MinUomType = uom.Intermediate
		tc.ItemMinUomType = uom.Intermediate
		tc.MinQty = 2     // 2 intermediates = 8 base
		tc.ItemMinQty = 1 // 4 base
		conv := &uom.Conversion{Base: 4}
		tp := purchase(ItemPurchase{ItemID: "A", Qty: 4}, ItemPurchase{ItemID: "B", Qty: 4})
		assert.True(t, tc.met(tp, itemMap(tp), conv, nil))
		tp = purchase(ItemPurchase{ItemID: "A", Qty: 4}, ItemPurchase{ItemID: "B", Qty: 3})
		assert.False(t, tc.met(tp, itemMap(tp), conv, nil))
	})
}

func TestTagCriteria_RatioGates(t *testing.T) {
	includedTag := tag.Tag{Group: "category", Value: "frozen"}

	t.Run("outside-listed quantity must clear tag minimum", func(t *testing.T) {
		tc := &TagCriteria{
			MinQty: 5, MinUomType: uom.Base,
			Items:      []TagCriteriaItem{{ID: "A"}},
			ItemMinQty: 1, ItemMinUomType: uom.Base,
			MinItemCombination:   1,
			IsRatioBased:         true,
			IsItemHasMatchingTag: true,
		}
		items := map[string]ItemPurchase{"A": {ItemID: "A", Qty: 4}}

		tp := &TagPurchase{Tag: brandAcme, Qty: 9, Items: []ItemPurchase{
			{ItemID: "A", Qty: 4}, {ItemID: "B", Qty: 5},
		}}
		assert.True(t, tc.met(tp, items, nil, nil))

		tp = &TagPurchase{Tag: brandAcme, Qty: 8, Items: []ItemPurchase{
			{ItemID: "A", Qty: 4}, {ItemID: "B", Qty: 4},
		}}
		assert.False(t, tc.met(tp, items, nil, nil))
	})

	t.Run("items outside the included tag must clear tag minimum", func(t *testing.T) {
		tc := &TagCriteria{
			MinQty: 5, MinUomType: uom.Base,
			MinItemCombination: 1,
			IncludedTag:        &includedTag,
			IsRatioBased:       true,
		}
		tp := &TagPurchase{Tag: brandAcme, Qty: 10, Items: []ItemPurchase{
			{ItemID: "A", Qty: 6}, {ItemID: "B", Qty: 4},
		}}
		included := &TagPurchase{Tag: includedTag, Qty: 4, Items: []ItemPurchase{
			{ItemID: "B", Qty: 4},
		}}

		// Only A (qty 6) sits outside the included tag.
		assert.True(t, tc.met(tp, nil, nil, included))

		tc.MinQty = 7
		assert.False(t, tc.met(tp, nil, nil, included))
	})

	t.Run("included-tag ratio gate skipped without included purchase", func(t *testing.T) {
		tc := &TagCriteria{
			MinQty: 5, MinUomType: uom.Base,
			MinItemCombination: 1,
			IncludedTag:        &includedTag,
			IsRatioBased:       true,
		}
		tp := &TagPurchase{Tag: brandAcme, Qty: 6, Items: []ItemPurchase{
			{ItemID: "A", Qty: 6},
		}}
		assert.True(t, tc.met(tp, nil, nil, nil))
	})
}
