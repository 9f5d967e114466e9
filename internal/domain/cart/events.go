package cart

import (
	"github.com/google/uuid"

	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// Event is a domain event queued on the aggregate and drained by the caller
// for transactional persistence and publication.
type Event interface {
	EventName() string
}

// ItemAdded signals a new line item appearing in the cart.
type ItemAdded struct {
	CartID uuid.UUID
	ItemID string
	Qty    uom.Quantity
}

func (ItemAdded) EventName() string { return "cart.item_added" }

// ItemQtyChanged signals an existing line item's quantity, sales factor, or
// sellability changing.
type ItemQtyChanged struct {
	CartID uuid.UUID
	ItemID string
	Qty    uom.Quantity
}

func (ItemQtyChanged) EventName() string { return "cart.item_qty_changed" }

// ItemRemoved signals a line item leaving the cart.
type ItemRemoved struct {
	CartID uuid.UUID
	ItemID string
}

func (ItemRemoved) EventName() string { return "cart.item_removed" }

// Cleared signals the whole cart being emptied.
type Cleared struct {
	CartID uuid.UUID
}

func (Cleared) EventName() string { return "cart.cleared" }
