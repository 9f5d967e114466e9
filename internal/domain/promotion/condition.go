package promotion

import (
	"github.com/go-faster/errors"

	"github.com/gudangin/pricing-engine/internal/domain/criterion"
)

// ConditionKind discriminates the two condition structures.
type ConditionKind string

const (
	// OneOf conditions carry a benefit per criterion; the first satisfied
	// criterion determines the benefit. Used for strata-style promotions
	// where only the highest qualifying tier applies: tiers are ordered
	// richest-first.
	OneOf ConditionKind = "one_of"
	// AllOf conditions require every criterion to hold and carry a single
	// condition-level benefit.
	AllOf ConditionKind = "all_of"
)

// ConditionCriterion pairs a criterion with its benefit. The benefit is only
// set for OneOf conditions.
type ConditionCriterion struct {
	Criterion criterion.Criterion
	Benefit   *Benefit
}

// Condition is a promotion's qualification rule.
type Condition struct {
	Kind     ConditionKind
	Criteria []ConditionCriterion

	// Benefit is the condition-level reward of AllOf conditions.
	Benefit *Benefit
}

// Resolve evaluates the condition against the comparator and returns the
// benefit it yields, or nil when the condition is not satisfied.
func (c Condition) Resolve(cmp criterion.Comparator) (*Benefit, error) {
	switch c.Kind {
	case OneOf:
		for _, cc := range c.Criteria {
			met, err := cc.Criterion.Met(cmp)
			if err != nil {
				return nil, err
			}
			if met {
				return cc.Benefit, nil
			}
		}
		return nil, nil
	case AllOf:
		for _, cc := range c.Criteria {
			met, err := cc.Criterion.Met(cmp)
			if err != nil {
				return nil, err
			}
			if !met {
				return nil, nil
			}
		}
		return c.Benefit, nil
	default:
		return nil, errors.Errorf("unsupported condition kind: %q", c.Kind)
	}
}
