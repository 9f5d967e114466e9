package uom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity(t *testing.T) {
	q, err := NewQuantity(5)
	require.NoError(t, err)
	assert.Equal(t, Quantity(5), q)

	_, err = NewQuantity(-1)
	require.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestQuantity_Sub(t *testing.T) {
	q := Quantity(3)

	got, err := q.Sub(2)
	require.NoError(t, err)
	assert.Equal(t, Quantity(1), got)

	_, err = q.Sub(4)
	require.ErrorIs(t, err, ErrNegativeQuantity)

	assert.Equal(t, Quantity(0), q.SubFloor(4))
	assert.Equal(t, Quantity(1), q.SubFloor(2))
}

func TestNewPackQty(t *testing.T) {
	p, err := NewPackQty(12)
	require.NoError(t, err)
	assert.Equal(t, PackQty(12), p)

	_, err = NewPackQty(0)
	var ive *InvalidValueError
	require.ErrorAs(t, err, &ive)
	assert.Equal(t, int64(0), ive.Value)
}

func TestNewSalesFactor(t *testing.T) {
	f, err := NewSalesFactor(1)
	require.NoError(t, err)
	assert.Equal(t, SalesFactor(1), f)

	_, err = NewSalesFactor(-3)
	var ive *InvalidValueError
	require.ErrorAs(t, err, &ive)
	assert.Equal(t, int64(-3), ive.Value)
}

func TestToIntermediate(t *testing.T) {
	tests := []struct {
		name string
		qty  Quantity
		base PackQty
		want Quantity
	}{
		{name: "no intermediate tier yields zero", qty: 100, base: 1, want: 0},
		{name: "floor division", qty: 25, base: 12, want: 2},
		{name: "exact multiple", qty: 24, base: 12, want: 2},
		{name: "below one unit", qty: 5, base: 12, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToIntermediate(tt.qty, tt.base))
		})
	}
}

func TestToPack(t *testing.T) {
	twenty := PackQty(20)
	one := PackQty(1)

	assert.Equal(t, Quantity(0), ToPack(100, nil))
	assert.Equal(t, Quantity(0), ToPack(100, &one))
	assert.Equal(t, Quantity(5), ToPack(100, &twenty))
	assert.Equal(t, Quantity(4), ToPack(99, &twenty))
}

func TestToBase(t *testing.T) {
	forty := PackQty(40)
	conv := Conversion{Base: 10, Pack: &forty}

	assert.Equal(t, Quantity(7), ToBase(7, Base, conv))
	assert.Equal(t, Quantity(30), ToBase(3, Intermediate, conv))
	assert.Equal(t, Quantity(80), ToBase(2, Pack, conv))

	// Pack conversion without a pack tier multiplies by 1.
	assert.Equal(t, Quantity(2), ToBase(2, Pack, Conversion{Base: 10}))
}

func TestLcm(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   int64
		err    error
	}{
		{name: "two coprime values", values: []int64{9, 2}, want: 18},
		{name: "shared factor", values: []int64{12, 8}, want: 24},
		{name: "three values", values: []int64{2, 3, 4}, want: 12},
		{name: "negative treated as absolute", values: []int64{-9, 2}, want: 18},
		{name: "zero operand yields zero", values: []int64{0, 5}, want: 0},
		{name: "single value rejected", values: []int64{9}, err: ErrTooFewValues},
		{name: "empty rejected", values: nil, err: ErrTooFewValues},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lcm(tt.values...)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveSalesFactor(t *testing.T) {
	assert.Equal(t, SalesFactor(18), EffectiveSalesFactor(9, 2))
	assert.Equal(t, SalesFactor(12), EffectiveSalesFactor(12, 4))
	assert.Equal(t, SalesFactor(5), EffectiveSalesFactor(1, 5))
}

func TestMaxScale(t *testing.T) {
	ratio := Ratio{X: 9, Y: 2}

	tests := []struct {
		name string
		x, y int64
		want Ratio
	}{
		{name: "bounded by y", x: 19, y: 2, want: Ratio{X: 9, Y: 2}},
		{name: "scales twice", x: 100, y: 5, want: Ratio{X: 18, Y: 4}},
		{name: "scales five times", x: 50, y: 50, want: Ratio{X: 45, Y: 10}},
		{name: "below one ratio stays unscaled", x: 4, y: 1, want: Ratio{X: 9, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxScale(tt.x, tt.y, ratio))
		})
	}
}
