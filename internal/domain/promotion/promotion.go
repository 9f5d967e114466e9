package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested promotion does not exist.
	ErrNotFound = errors.New("promotion not found")
	// ErrInactive is returned when a promotion is used outside its validity
	// window.
	ErrInactive = errors.New("promotion not active")
)

// Promotion is one active promotion definition, already resolved from
// storage into the condition/benefit shapes the engine evaluates.
type Promotion struct {
	ID        uuid.UUID
	Name      string
	Condition Condition

	// ItemIDs scopes the benefit to specific cart lines. Empty means the
	// promotion applies to every line.
	ItemIDs []string

	ValidFrom *time.Time
	ValidTo   *time.Time
}

// Validate reports whether the promotion is inside its validity window at
// the given instant.
func (p Promotion) Validate(now time.Time) error {
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return ErrInactive
	}
	if p.ValidTo != nil && now.After(*p.ValidTo) {
		return ErrInactive
	}
	return nil
}

// AppliesTo reports whether the promotion's benefit covers the given item.
func (p Promotion) AppliesTo(itemID string) bool {
	if len(p.ItemIDs) == 0 {
		return true
	}
	for _, id := range p.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// Repository provides lookup of promotion definitions.
type Repository interface {
	ListActive(ctx context.Context, now time.Time) ([]Promotion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
}
