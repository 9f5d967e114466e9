// Package catalog describes the item data the pricing engine consumes:
// prices, UOM pack sizes, sales factors, and tags, supplied by a repository
// collaborator.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/gudangin/pricing-engine/internal/domain/tag"
	"github.com/gudangin/pricing-engine/internal/domain/uom"
)

// ErrNotFound is returned when a requested catalog entry does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is one sellable item's pricing and UOM configuration.
type Entry struct {
	ItemID string
	Name   string
	Price  decimal.Decimal

	// BaseContains is the number of base units in one intermediate unit;
	// PackContains the number in one pack, when the item has a pack tier.
	BaseContains uom.PackQty
	PackContains *uom.PackQty

	Factor       uom.SalesFactor
	PackSellable bool
	Tags         []tag.Tag
}

// Conversion returns the entry's UOM conversion.
func (e Entry) Conversion() uom.Conversion {
	return uom.Conversion{Base: e.BaseContains, Pack: e.PackContains}
}

// Repository defines read operations against the item catalog.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	GetByID(ctx context.Context, id string) (*Entry, error)
	GetByIDs(ctx context.Context, ids []string) ([]Entry, error)
}
