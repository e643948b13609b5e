// Package catalog holds the immutable reference data the ordering core
// operates on: products, their modifier groups and options, and discounts.
// The data is owned by an external catalog service; this package only
// models it and derives selection rules from it.
package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModifierOption is a selectable choice within a modifier group.
// PriceAdjustment is a signed per-unit delta on the product price;
// SelectionCost is the number of points one unit consumes from the
// group's selection budget.
type ModifierOption struct {
	ID              uuid.UUID
	Name            string
	PriceAdjustment decimal.Decimal
	SelectionCost   int32
	SortOrder       int32
}

// ModifierGroup is a named set of options with selection rules. A product
// references its groups through an ordered join (DisplayOrder), which
// defines the selection wizard's step sequence.
type ModifierGroup struct {
	ID              uuid.UUID
	Name            string
	MinSelection    int32
	SelectionBudget int32
	// MaxSelections caps total units selected across the group's options.
	// nil means unbounded, unless MaxSelectionsSyncedToOptionCount is set,
	// which pins the cap to the option count.
	MaxSelections                   *int32
	MaxSelectionsSyncedToOptionCount bool
	// AllowRepeatedSelections makes re-selecting an option increment its
	// quantity instead of toggling it off.
	AllowRepeatedSelections bool
	// ExactBudgetRequired locks the group to options sharing the first
	// selection's cost and requires the budget to be spent exactly.
	ExactBudgetRequired bool
	DisplayOrder        int32
	Options             []ModifierOption
}

// EffectiveMaxSelections resolves the group's cap on total selected units.
// Returns nil when the group is unbounded. A group requiring exactly one
// unit with a one-point budget is treated as a single-required-choice
// group even when no explicit cap is configured.
func (g ModifierGroup) EffectiveMaxSelections() *int32 {
	if g.MaxSelectionsSyncedToOptionCount {
		n := int32(len(g.Options))
		return &n
	}
	if g.MaxSelections != nil {
		return g.MaxSelections
	}
	if g.MinSelection == 1 && g.SelectionBudget == 1 {
		one := int32(1)
		return &one
	}
	return nil
}

// Option returns the group's option with the given id, or nil.
func (g ModifierGroup) Option(id uuid.UUID) *ModifierOption {
	for i := range g.Options {
		if g.Options[i].ID == id {
			return &g.Options[i]
		}
	}
	return nil
}

// Product is a sellable item with its ordered modifier group sequence.
type Product struct {
	ID             uuid.UUID
	Name           string
	Price          decimal.Decimal
	ModifierGroups []ModifierGroup
}

// Discount is a named price reduction, applicable to a single line item
// or to a whole order. MinimumOrderAmount gates the order-level effect.
type Discount struct {
	ID                 uuid.UUID
	Name               string
	Type               string // enum.DiscountTypePercent or enum.DiscountTypeFixed
	Value              decimal.Decimal
	MinimumOrderAmount decimal.Decimal
	IsActive           bool
}
