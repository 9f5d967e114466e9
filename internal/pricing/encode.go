package pricing

import (
	"github.com/go-faster/jx"
)

// Encode writes the summary as JSON. Monetary fields are rendered as strings
// with two decimal places; full precision stays internal.
func (s *Summary) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("lines")
	e.ArrStart()
	for i := range s.Lines {
		s.Lines[i].Encode(e)
	}
	e.ArrEnd()
	if len(s.FreeGrants) > 0 {
		e.FieldStart("free_grants")
		e.ArrStart()
		for _, g := range s.FreeGrants {
			e.ObjStart()
			e.FieldStart("product_id")
			e.Str(g.ProductID)
			e.FieldStart("qty")
			e.Int64(int64(g.Qty))
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.FieldStart("subtotal")
	e.Str(s.Subtotal.StringFixed(2))
	e.FieldStart("discount")
	e.Str(s.Discount.StringFixed(2))
	e.FieldStart("coin")
	e.Str(s.Coin.StringFixed(2))
	e.FieldStart("voucher_discount")
	e.Str(s.VoucherDiscount.StringFixed(2))
	e.FieldStart("total")
	e.Str(s.Total.StringFixed(2))
	e.ObjEnd()
}

// Encode writes one priced line as JSON.
func (l *Line) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("item_id")
	e.Str(l.ItemID)
	e.FieldStart("qty")
	e.Int64(int64(l.Qty))
	e.FieldStart("unit_price")
	e.Str(l.UnitPrice.StringFixed(2))
	e.FieldStart("subtotal")
	e.Str(l.Subtotal.StringFixed(2))
	e.FieldStart("discount")
	e.Str(l.Discount.StringFixed(2))
	e.FieldStart("coin")
	e.Str(l.Coin.StringFixed(2))
	e.FieldStart("net_price")
	e.Str(l.NetPrice.StringFixed(2))
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (s *Summary) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	s.Encode(&e)
	return e.Bytes(), nil
}
