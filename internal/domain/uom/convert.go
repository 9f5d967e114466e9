package uom

// ToIntermediate converts a base-unit quantity into whole intermediate units.
// A contains-value of 1 means the item has no intermediate tier, which always
// yields zero.
func ToIntermediate(q Quantity, base PackQty) Quantity {
	if base == 1 {
		return 0
	}
	return Quantity(int64(q) / int64(base))
}

// ToPack converts a base-unit quantity into whole packs. A missing pack tier
// or a contains-value of 1 always yields zero.
func ToPack(q Quantity, pack *PackQty) Quantity {
	if pack == nil || *pack == 1 {
		return 0
	}
	return Quantity(int64(q) / int64(*pack))
}

// ToBase converts a quantity expressed in the given UOM tier into base units
// using the item's conversion. A pack quantity without a pack tier in the
// conversion multiplies by 1.
func ToBase(q Quantity, t Type, c Conversion) Quantity {
	switch t {
	case Pack:
		mul := PackQty(1)
		if c.Pack != nil {
			mul = *c.Pack
		}
		return Quantity(int64(q) * int64(mul))
	case Intermediate:
		return Quantity(int64(q) * int64(c.Base))
	default:
		return q
	}
}
