package promotion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudangin/pricing-engine/internal/domain/criterion"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolveMonetaryBenefit(t *testing.T) {
	twelve := uom.PackQty(12)
	conv := &uom.Conversion{Base: 4, Pack: &twelve}

	tests := []struct {
		name  string
		line  BenefitLine
		price decimal.Decimal
		conv  *uom.Conversion
		want  decimal.Decimal
	}{
		{
			name:  "percentage of price",
			line:  BenefitLine{Type: Percentage, Value: dec("10")},
			price: dec("100"),
			want:  dec("10"),
		},
		{
			name:  "amount without conversion is raw",
			line:  BenefitLine{Type: Amount, Value: dec("20"), ScaleUomType: uom.Pack},
			price: dec("100"),
			want:  dec("20"),
		},
		{
			name:  "amount scaled by pack contains",
			line:  BenefitLine{Type: Amount, Value: dec("24"), ScaleUomType: uom.Pack},
			price: dec("100"),
			conv:  conv,
			want:  dec("2"),
		},
		{
			name:  "amount scaled by intermediate contains",
			line:  BenefitLine{Type: Amount, Value: dec("24"), ScaleUomType: uom.Intermediate},
			price: dec("100"),
			conv:  conv,
			want:  dec("6"),
		},
		{
			name:  "amount at base tier unscaled",
			line:  BenefitLine{Type: Amount, Value: dec("24"), ScaleUomType: uom.Base},
			price: dec("100"),
			conv:  conv,
			want:  dec("24"),
		},
		{
			name:  "unknown type yields zero",
			line:  BenefitLine{Type: "bogus", Value: dec("24")},
			price: dec("100"),
			want:  decimal.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveMonetaryBenefit(tt.line, tt.price, tt.conv)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolveOfferedPrice(t *testing.T) {
	assert.True(t, dec("70").Equal(ResolveOfferedPrice(dec("100"), dec("30"))))
	assert.True(t, decimal.Zero.Equal(ResolveOfferedPrice(dec("100"), dec("120"))))
	assert.True(t, decimal.Zero.Equal(ResolveOfferedPrice(dec("100"), dec("100"))))
}

func TestStackLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []BenefitLine
		price decimal.Decimal
		want  decimal.Decimal
	}{
		{
			name: "percentage then amount",
			lines: []BenefitLine{
				{Type: Percentage, Value: dec("10")},
				{Type: Amount, Value: dec("20"), ScaleUomType: uom.Base},
			},
			price: dec("100"),
			want:  dec("30"),
		},
		{
			name: "second percentage applies to residual",
			lines: []BenefitLine{
				{Type: Percentage, Value: dec("10")},
				{Type: Percentage, Value: dec("10")},
			},
			price: dec("100"),
			want:  dec("19"), // 10 + 9
		},
		{
			name: "total clamped to price",
			lines: []BenefitLine{
				{Type: Amount, Value: dec("80")},
				{Type: Amount, Value: dec("50")},
			},
			price: dec("100"),
			want:  dec("100"),
		},
		{
			name: "chain stops once residual is zero",
			lines: []BenefitLine{
				{Type: Percentage, Value: dec("100")},
				{Type: Amount, Value: dec("50")},
			},
			price: dec("100"),
			want:  dec("100"),
		},
		{
			name:  "no lines no discount",
			lines: nil,
			price: dec("100"),
			want:  decimal.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StackLines(tt.lines, tt.price, nil)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestFreeProductBenefit_Resolve(t *testing.T) {
	b := FreeProductBenefit{ProductID: "p1", Ratio: uom.Ratio{X: 9, Y: 2}, MaxQty: 5}

	assert.Equal(t, uom.Quantity(0), b.Resolve(8))
	assert.Equal(t, uom.Quantity(2), b.Resolve(9))
	assert.Equal(t, uom.Quantity(4), b.Resolve(100)) // capped by MaxQty 5 -> 2 ratios
	uncapped := FreeProductBenefit{ProductID: "p1", Ratio: uom.Ratio{X: 9, Y: 2}}
	assert.Equal(t, uom.Quantity(22), uncapped.Resolve(100))
}

func TestCondition_Resolve(t *testing.T) {
	richer := &Benefit{Discount: []BenefitLine{{Type: Percentage, Value: dec("20")}}}
	poorer := &Benefit{Discount: []BenefitLine{{Type: Percentage, Value: dec("10")}}}

	oneOf := Condition{
		Kind: OneOf,
		Criteria: []ConditionCriterion{
			{Criterion: criterion.Criterion{Kind: criterion.MinimumPurchaseQty, Qty: 100}, Benefit: richer},
			{Criterion: criterion.Criterion{Kind: criterion.MinimumPurchaseQty, Qty: 10}, Benefit: poorer},
		},
	}

	got, err := oneOf.Resolve(criterion.Comparator{Qty: 150})
	require.NoError(t, err)
	assert.Same(t, richer, got)

	got, err = oneOf.Resolve(criterion.Comparator{Qty: 50})
	require.NoError(t, err)
	assert.Same(t, poorer, got)

	got, err = oneOf.Resolve(criterion.Comparator{Qty: 5})
	require.NoError(t, err)
	assert.Nil(t, got)

	allOf := Condition{
		Kind: AllOf,
		Criteria: []ConditionCriterion{
			{Criterion: criterion.Criterion{Kind: criterion.MinimumPurchaseQty, Qty: 10}},
			{Criterion: criterion.Criterion{Kind: criterion.MinimumPurchaseAmount, Amount: dec("50")}},
		},
		Benefit: poorer,
	}

	got, err = allOf.Resolve(criterion.Comparator{Qty: 20, Amount: dec("60")})
	require.NoError(t, err)
	assert.Same(t, poorer, got)

	got, err = allOf.Resolve(criterion.Comparator{Qty: 20, Amount: dec("40")})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Condition{Kind: "bogus"}.Resolve(criterion.Comparator{})
	require.Error(t, err)
}
