package cart

import (
	"time"

	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// Item is one cart line, owned exclusively by the aggregate. All quantities
// are kept in every tier: Qty in base units plus the derived intermediate and
// pack counts.
type Item struct {
	ItemID          string
	Qty             uom.Quantity
	QtyIntermediate uom.Quantity
	QtyPack         uom.Quantity
	SalesFactor     uom.SalesFactor
	Tags            []tag.Tag
	IsBaseSellable  bool
	IsPackSellable  bool
	AddedAt         time.Time

	dirty bool
}

// transition is the pure dirty-state step: it returns the next value and
// whether it differs from the old one.
func transition[T comparable](old, next T) (T, bool) {
	if old == next {
		return old, false
	}
	return next, true
}

// UpdateQty replaces the item's quantities across all tiers. The item is
// marked dirty only when at least one value actually changed.
func (i *Item) UpdateQty(base, intermediate, pack uom.Quantity) bool {
	var c1, c2, c3 bool
	i.Qty, c1 = transition(i.Qty, base)
	i.QtyIntermediate, c2 = transition(i.QtyIntermediate, intermediate)
	i.QtyPack, c3 = transition(i.QtyPack, pack)
	changed := c1 || c2 || c3
	if changed {
		i.dirty = true
	}
	return changed
}

// UpdateSalesFactor replaces the effective sales factor, dirtying the item
// only on an actual change.
func (i *Item) UpdateSalesFactor(f uom.SalesFactor) bool {
	var changed bool
	i.SalesFactor, changed = transition(i.SalesFactor, f)
	if changed {
		i.dirty = true
	}
	return changed
}

// UpdateUomSellable replaces the per-tier sellability flags, dirtying the
// item only on an actual change.
func (i *Item) UpdateUomSellable(base, pack bool) bool {
	var c1, c2 bool
	i.IsBaseSellable, c1 = transition(i.IsBaseSellable, base)
	i.IsPackSellable, c2 = transition(i.IsPackSellable, pack)
	changed := c1 || c2
	if changed {
		i.dirty = true
	}
	return changed
}

// Dirty reports whether the item has unpersisted changes.
func (i *Item) Dirty() bool {
	return i.dirty
}

// MarkClean clears the dirty flag after the persistence adapter has written
// the item.
func (i *Item) MarkClean() {
	i.dirty = false
}
