package cart

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

var (
	// ErrNotFound is returned when a referenced cart does not exist.
	ErrNotFound = errors.New("cart not found")
	// ErrPackNotSellable is returned when a pack quantity is requested on an
	// item without a sellable pack tier.
	ErrPackNotSellable = errors.New("item pack is not sellable")
	// ErrItemPriceNotAvailable is returned when the resolved item price is
	// zero or missing.
	ErrItemPriceNotAvailable = errors.New("item price not available")
	// ErrZeroQuantity is returned when a put resolves to a zero total
	// quantity; removal goes through RemoveItem.
	ErrZeroQuantity = errors.New("quantity must be positive")
)

// QuantityNotFactorError rejects a total quantity that is not an exact
// multiple of the item's effective sales factor.
type QuantityNotFactorError struct {
	ItemID    string
	Factor    uom.SalesFactor
	Requested uom.Quantity
}

func (e *QuantityNotFactorError) Error() string {
	return fmt.Sprintf("quantity %d for item %s must be a factor of %d", e.Requested, e.ItemID, e.Factor)
}
