// Package cart implements the cart aggregate: line items with UOM-aware
// quantities, a derived per-tag quantity summary, and the domain events a
// mutation produces.
package cart

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gudangin/pricing-engine/internal/domain/catalog"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// DefaultTagGroups is the whitelist of tag-key prefixes aggregated into the
// cart's tag summary when no custom whitelist is configured.
var DefaultTagGroups = []string{"brand", "category", "principal"}

// Cart is the aggregate root owning line items and the derived tag summary.
// Callers must serialize mutations per cart; the aggregate performs no
// locking itself.
type Cart struct {
	ID        uuid.UUID
	BuyerID   string
	Address   string
	Items     *ItemList
	Tags      *TagList
	UpdatedAt time.Time

	tagGroups map[string]struct{}
	events    []Event
	dirty     bool
	now       func() time.Time
}

// New creates an empty cart. A nil tagGroups uses DefaultTagGroups.
func New(id uuid.UUID, buyerID string, tagGroups []string) *Cart {
	if tagGroups == nil {
		tagGroups = DefaultTagGroups
	}
	groups := make(map[string]struct{}, len(tagGroups))
	for _, g := range tagGroups {
		groups[g] = struct{}{}
	}
	return &Cart{
		ID:        id,
		BuyerID:   buyerID,
		Items:     NewItemList(),
		Tags:      NewTagList(),
		tagGroups: groups,
		now:       time.Now,
	}
}

// PutItemInput carries one put-item command: the resolved catalog entry plus
// the requested quantities per tier. BaseQty counts base-tier sale units,
// PackQty whole packs. Additive adds to an existing line instead of
// replacing its quantity.
type PutItemInput struct {
	Entry    catalog.Entry
	BaseQty  uom.Quantity
	PackQty  uom.Quantity
	Additive bool
}

// PutItem creates or updates the line for the entry's item. The total
// requested quantity must be positive and an exact multiple of the item's
// effective sales factor. A call that resolves to the line's current state raises no event
// and dirties nothing.
func (c *Cart) PutItem(in PutItemInput) error {
	e := in.Entry

	if in.PackQty > 0 && (!e.PackSellable || e.PackContains == nil) {
		return errors.Wrapf(ErrPackNotSellable, "item %s", e.ItemID)
	}
	if e.Price.IsZero() {
		return errors.Wrapf(ErrItemPriceNotAvailable, "item %s", e.ItemID)
	}

	total := uom.Quantity(int64(in.BaseQty) * int64(e.BaseContains))
	if e.PackContains != nil {
		total = total.Add(uom.Quantity(int64(in.PackQty) * int64(*e.PackContains)))
	}
	existing := c.Items.Get(e.ItemID)
	if existing != nil && in.Additive {
		total = total.Add(existing.Qty)
	}
	if total.IsZero() {
		return errors.Wrapf(ErrZeroQuantity, "item %s", e.ItemID)
	}

	factor := uom.EffectiveSalesFactor(e.BaseContains, e.Factor)
	if int64(total)%int64(factor) != 0 {
		return &QuantityNotFactorError{ItemID: e.ItemID, Factor: factor, Requested: total}
	}

	intermediate := uom.ToIntermediate(total, e.BaseContains)
	pack := uom.ToPack(total, e.PackContains)
	baseSellable := true
	if e.PackContains != nil && *e.PackContains > 1 && int64(factor)%int64(*e.PackContains) == 0 {
		// The sales factor already covers whole packs, so base-unit selling
		// is disabled.
		baseSellable = false
	}

	if existing != nil {
		changed := existing.UpdateQty(total, intermediate, pack)
		changed = existing.UpdateSalesFactor(factor) || changed
		changed = existing.UpdateUomSellable(baseSellable, e.PackSellable) || changed
		if !changed {
			return nil
		}
		c.raise(ItemQtyChanged{CartID: c.ID, ItemID: e.ItemID, Qty: total})
	} else {
		c.Items.Put(&Item{
			ItemID:          e.ItemID,
			Qty:             total,
			QtyIntermediate: intermediate,
			QtyPack:         pack,
			SalesFactor:     factor,
			Tags:            e.Tags,
			IsBaseSellable:  baseSellable,
			IsPackSellable:  e.PackSellable,
			AddedAt:         c.now(),
			dirty:           true,
		})
		c.raise(ItemAdded{CartID: c.ID, ItemID: e.ItemID, Qty: total})
	}

	c.recomputeTags()
	c.touch()
	return nil
}

// RemoveItem removes the line for the item. Removing a non-member is a
// silent no-op.
func (c *Cart) RemoveItem(itemID string) {
	if c.Items.Remove(itemID) == nil {
		return
	}
	c.raise(ItemRemoved{CartID: c.ID, ItemID: itemID})
	c.recomputeTags()
	c.touch()
}

// Clear empties all items and tags unconditionally, even when the cart was
// already empty.
func (c *Cart) Clear() {
	for _, it := range c.Items.Current() {
		c.Items.Remove(it.ItemID)
	}
	for _, ct := range c.Tags.Current() {
		c.Tags.Remove(ct.Tag)
	}
	c.raise(Cleared{CartID: c.ID})
	c.touch()
}

// UpdateAddress replaces the delivery address. Setting the current address
// again changes nothing.
func (c *Cart) UpdateAddress(address string) {
	if c.Address == address {
		return
	}
	c.Address = address
	c.touch()
}

// PullEvents drains the queued domain events.
func (c *Cart) PullEvents() []Event {
	events := c.events
	c.events = nil
	return events
}

// Dirty reports whether the aggregate has unpersisted changes.
func (c *Cart) Dirty() bool {
	return c.dirty
}

// recomputeTags rebuilds the tag summary from scratch: every quantity is
// reset to zero, current items are re-summed under their whitelisted tags,
// and entries settling at zero are dropped.
func (c *Cart) recomputeTags() {
	for _, ct := range c.Tags.Current() {
		ct.Qty = 0
		ct.Items = ct.Items[:0]
	}
	for _, it := range c.Items.Current() {
		for _, tg := range it.Tags {
			if _, ok := c.tagGroups[tg.Group]; !ok {
				continue
			}
			ct := c.Tags.Get(tg)
			if ct == nil {
				ct = &Tag{Tag: tg}
				c.Tags.Put(ct)
			}
			ct.Qty = ct.Qty.Add(it.Qty)
			ct.Items = append(ct.Items, it.ItemID)
		}
	}
	for _, ct := range c.Tags.Current() {
		if ct.Qty.IsZero() {
			c.Tags.Remove(ct.Tag)
		}
	}
}

func (c *Cart) raise(e Event) {
	c.events = append(c.events, e)
}

func (c *Cart) touch() {
	c.UpdatedAt = c.now()
	c.dirty = true
}
