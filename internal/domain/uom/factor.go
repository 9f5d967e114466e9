package uom

import "github.com/go-faster/errors"

// ErrTooFewValues is returned by Lcm when fewer than two operands are given.
var ErrTooFewValues = errors.New("lcm needs at least two values")

// Lcm returns the least common multiple of all values. Negative operands are
// treated as their absolute value. A zero operand makes the whole result
// zero; callers working with validated PackQty/SalesFactor values can never
// hit that case.
func Lcm(values ...int64) (int64, error) {
	if len(values) < 2 {
		return 0, ErrTooFewValues
	}
	result := abs(values[0])
	for _, v := range values[1:] {
		v = abs(v)
		if result == 0 || v == 0 {
			return 0, nil
		}
		result = result / gcd(result, v) * v
	}
	return result, nil
}

// EffectiveSalesFactor is the minimum sellable increment for an item: the
// least common multiple of the item's base pack size and the configured
// factor.
func EffectiveSalesFactor(base PackQty, factor SalesFactor) SalesFactor {
	l, _ := Lcm(int64(base), int64(factor))
	return SalesFactor(l)
}

// Ratio is an integer x:y pair, used for buy-x-get-y style benefits.
type Ratio struct {
	X int64
	Y int64
}

// MaxScale scales r by the largest whole multiple k such that k*r.X <= x and
// k*r.Y <= y. When not even one whole ratio fits within the bounds, r is
// returned unscaled.
func MaxScale(x, y int64, r Ratio) Ratio {
	if r.X <= 0 || r.Y <= 0 {
		return r
	}
	k := min(x/r.X, y/r.Y)
	if k < 1 {
		k = 1
	}
	return Ratio{X: r.X * k, Y: r.Y * k}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
