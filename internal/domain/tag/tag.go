// Package tag defines the product classification key used to group promotion
// and voucher eligibility across SKUs.
package tag

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrMalformed is returned when a raw string is not in "group:value" form.
var ErrMalformed = errors.New("malformed tag, want group:value")

// Tag is an immutable group:value classification attached to catalog items.
// Equality is structural.
type Tag struct {
	Group string
	Value string
}

// Parse builds a Tag from its canonical "group:value" string form. The value
// part may itself contain separators; only the first one splits.
func Parse(s string) (Tag, error) {
	group, value, ok := strings.Cut(s, ":")
	if !ok || group == "" {
		return Tag{}, errors.Wrapf(ErrMalformed, "parse %q", s)
	}
	return Tag{Group: group, Value: value}, nil
}

// String renders the canonical form. Parse(t.String()) round-trips exactly.
func (t Tag) String() string {
	return t.Group + ":" + t.Value
}
