package cart

import (
	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// Tag is one entry of the cart's derived tag summary: the total base-unit
// quantity of all current items carrying the tag, and those items' ids.
type Tag struct {
	Tag   tag.Tag
	Qty   uom.Quantity
	Items []string
}

// ItemList tracks the cart's line items across a load/persist cycle as three
// sets: current members, members added since load, and members removed since
// load. Persistence adapters read the three sets directly for diffing.
type ItemList struct {
	current map[string]*Item
	order   []string
	added   map[string]struct{}
	removed map[string]*Item
}

// NewItemList returns an empty list.
func NewItemList() *ItemList {
	return &ItemList{
		current: make(map[string]*Item),
		added:   make(map[string]struct{}),
		removed: make(map[string]*Item),
	}
}

// Load hydrates the list with persisted items; they are current but not
// added.
func (l *ItemList) Load(items []*Item) {
	for _, it := range items {
		l.current[it.ItemID] = it
		l.order = append(l.order, it.ItemID)
	}
}

// Get returns the current item with the given id, or nil.
func (l *ItemList) Get(id string) *Item {
	return l.current[id]
}

// Put appends a new item.
func (l *ItemList) Put(it *Item) {
	l.current[it.ItemID] = it
	l.order = append(l.order, it.ItemID)
	l.added[it.ItemID] = struct{}{}
}

// Remove takes the item out of the current set. An item that was added since
// load simply disappears; a loaded item is recorded as removed.
func (l *ItemList) Remove(id string) *Item {
	it, ok := l.current[id]
	if !ok {
		return nil
	}
	delete(l.current, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	if _, wasAdded := l.added[id]; wasAdded {
		delete(l.added, id)
	} else {
		l.removed[id] = it
	}
	return it
}

// Current returns the current items in insertion order.
func (l *ItemList) Current() []*Item {
	items := make([]*Item, 0, len(l.order))
	for _, id := range l.order {
		items = append(items, l.current[id])
	}
	return items
}

// Added returns the items added since load.
func (l *ItemList) Added() []*Item {
	items := make([]*Item, 0, len(l.added))
	for _, id := range l.order {
		if _, ok := l.added[id]; ok {
			items = append(items, l.current[id])
		}
	}
	return items
}

// Removed returns the loaded items removed since load.
func (l *ItemList) Removed() []*Item {
	items := make([]*Item, 0, len(l.removed))
	for _, it := range l.removed {
		items = append(items, it)
	}
	return items
}

// Len returns the number of current items.
func (l *ItemList) Len() int {
	return len(l.current)
}

// TagList is the change-tracked counterpart of ItemList for the derived tag
// summary, keyed by the tag value.
type TagList struct {
	current map[tag.Tag]*Tag
	order   []tag.Tag
	added   map[tag.Tag]struct{}
	removed map[tag.Tag]*Tag
}

// NewTagList returns an empty list.
func NewTagList() *TagList {
	return &TagList{
		current: make(map[tag.Tag]*Tag),
		added:   make(map[tag.Tag]struct{}),
		removed: make(map[tag.Tag]*Tag),
	}
}

// Load hydrates the list with persisted tag entries.
func (l *TagList) Load(tags []*Tag) {
	for _, t := range tags {
		l.current[t.Tag] = t
		l.order = append(l.order, t.Tag)
	}
}

// Get returns the current entry for the tag, or nil.
func (l *TagList) Get(t tag.Tag) *Tag {
	return l.current[t]
}

// Put appends a new entry.
func (l *TagList) Put(ct *Tag) {
	l.current[ct.Tag] = ct
	l.order = append(l.order, ct.Tag)
	l.added[ct.Tag] = struct{}{}
}

// Remove takes the entry out of the current set, mirroring ItemList.Remove.
func (l *TagList) Remove(t tag.Tag) *Tag {
	ct, ok := l.current[t]
	if !ok {
		return nil
	}
	delete(l.current, t)
	for i, ot := range l.order {
		if ot == t {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	if _, wasAdded := l.added[t]; wasAdded {
		delete(l.added, t)
	} else {
		l.removed[t] = ct
	}
	return ct
}

// Current returns the current entries in insertion order.
func (l *TagList) Current() []*Tag {
	tags := make([]*Tag, 0, len(l.order))
	for _, t := range l.order {
		tags = append(tags, l.current[t])
	}
	return tags
}

// Added returns the entries added since load.
func (l *TagList) Added() []*Tag {
	tags := make([]*Tag, 0, len(l.added))
	for _, t := range l.order {
		if _, ok := l.added[t]; ok {
			tags = append(tags, l.current[t])
		}
	}
	return tags
}

// Removed returns the loaded entries removed since load.
func (l *TagList) Removed() []*Tag {
	tags := make([]*Tag, 0, len(l.removed))
	for _, ct := range l.removed {
		tags = append(tags, ct)
	}
	return tags
}

// Len returns the number of current entries.
func (l *TagList) Len() int {
	return len(l.current)
}
