// Package voucher models redeemable vouchers and decides which of them may
// be combined on one order.
package voucher

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/gudangin/pricing-engine/internal/domain/promotion"
	"github.com/gudangin/pricing-engine/internal/domain/tag"
)

// ErrNotFound is returned when a referenced voucher does not exist.
var ErrNotFound = errors.New("voucher not found")

// Scope describes what part of the cart a voucher discounts.
type Scope string

const (
	// General vouchers discount the whole order.
	General Scope = "general"
	// Item vouchers discount specific items.
	Item Scope = "item"
	// Group vouchers discount items carrying a tag.
	Group Scope = "group"
)

// Voucher is one redeemable voucher already resolved to its benefit shape.
type Voucher struct {
	ID         uuid.UUID
	ExternalID string
	Code       string
	Scope      Scope
	Benefit    promotion.Benefit

	// ItemIDs scopes item vouchers; Tag scopes group vouchers.
	ItemIDs []string
	Tag     *tag.Tag

	// Combinable vouchers may stack with any other voucher regardless of
	// the general-voucher combinability configuration.
	Combinable bool

	// NonCombinable lists external ids of vouchers this one must not be
	// combined with. Populated by ResolveCombinability.
	NonCombinable []string
}

// RegisterNonCombinable records the other voucher's external id, once.
func (v *Voucher) RegisterNonCombinable(externalID string) {
	for _, id := range v.NonCombinable {
		if id == externalID {
			return
		}
	}
	v.NonCombinable = append(v.NonCombinable, externalID)
}

// CombinableWith reports whether the voucher may be applied together with
// the other voucher.
func (v *Voucher) CombinableWith(other *Voucher) bool {
	for _, id := range v.NonCombinable {
		if id == other.ExternalID {
			return false
		}
	}
	return true
}

// ResolveCombinability marks mutual non-combinability between every general
// voucher and every other applicable voucher when general vouchers are
// configured as non-combinable. Vouchers explicitly marked Combinable are
// left untouched.
func ResolveCombinability(vouchers []*Voucher, generalCombinable bool) {
	if generalCombinable {
		return
	}
	for _, g := range vouchers {
		if g.Scope != General {
			continue
		}
		for _, o := range vouchers {
			if o == g || o.Combinable {
				continue
			}
			g.RegisterNonCombinable(o.ExternalID)
			o.RegisterNonCombinable(g.ExternalID)
		}
	}
}

// Repository provides voucher lookup and ingest.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	UpsertCode(ctx context.Context, code string) error
}
