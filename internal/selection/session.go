// Package selection implements the step-by-step modifier selection engine.
// A Session walks a product's modifier groups in display order, enforcing
// each group's min/max counts, point budget, repeat rules, and exact-budget
// cost lock. Sessions are plain values with no I/O; callers (UI or the
// order service replaying a submitted choice list) drive them through
// Select/Advance/Retreat and read pure predicates for display decisions.
package selection

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/catalog"
)

// Errors returned by session operations. Selection rejections leave the
// session unchanged; the UI typically swallows them without a message.
var (
	ErrSessionComplete      = errors.New("selection session already confirmed")
	ErrNotCurrentGroup      = errors.New("group is not the current step")
	ErrUnknownOption        = errors.New("option does not belong to group")
	ErrMaxSelectionsReached = errors.New("selection exceeds group max")
	ErrBudgetExceeded       = errors.New("selection exceeds group budget")
	ErrCostLocked           = errors.New("option cost does not match locked cost")
	ErrGroupNotSatisfied    = errors.New("group selection rules not satisfied")
	ErrNotLastGroup         = errors.New("confirm is only valid on the last group")
	ErrRepeatNotAllowed     = errors.New("group does not allow repeated selections")
)

// Chosen is one finalized modifier choice.
type Chosen struct {
	Option   catalog.ModifierOption
	Quantity int32
}

// entry is one selected option with its quantity, kept in selection order
// so the finalized modifier list is deterministic.
type entry struct {
	optionID uuid.UUID
	quantity int32
}

// Session is the transient per-wizard state. The zero value is not usable;
// construct with NewSession.
type Session struct {
	product   catalog.Product
	step      int
	confirmed bool
	// selections[i] holds the ordered selections of product.ModifierGroups[i].
	selections [][]entry
}

// NewSession opens a selection session for the product at step 0 with all
// groups empty. A product without modifier groups is complete immediately.
func NewSession(product catalog.Product) *Session {
	s := &Session{
		product:    product,
		selections: make([][]entry, len(product.ModifierGroups)),
	}
	if len(product.ModifierGroups) == 0 {
		s.confirmed = true
	}
	return s
}

// Step returns the current group index.
func (s *Session) Step() int { return s.step }

// Confirmed reports whether the session has passed its last group.
func (s *Session) Confirmed() bool { return s.confirmed }

// CurrentGroup returns the group at the current step.
func (s *Session) CurrentGroup() catalog.ModifierGroup {
	return s.product.ModifierGroups[s.step]
}

// ItemsUsed is the total unit count selected in the current group.
func (s *Session) ItemsUsed() int32 {
	if len(s.selections) == 0 {
		return 0
	}
	return itemsUsed(s.selections[s.step])
}

// PointsUsed is the total budget cost consumed in the current group.
func (s *Session) PointsUsed() int32 {
	if len(s.selections) == 0 {
		return 0
	}
	return pointsUsed(s.CurrentGroup(), s.selections[s.step])
}

// IsMinMet reports whether the current group's minimum selection count is met.
func (s *Session) IsMinMet() bool {
	if len(s.selections) == 0 {
		return true
	}
	return s.ItemsUsed() >= s.CurrentGroup().MinSelection
}

// SelectedQuantity returns the selected quantity of an option in the
// current group, zero when unselected.
func (s *Session) SelectedQuantity(optionID uuid.UUID) int32 {
	for _, e := range s.selections[s.step] {
		if e.optionID == optionID {
			return e.quantity
		}
	}
	return 0
}

// lockedCost returns the cost the current group is locked to under
// ExactBudgetRequired, or nil when unlocked. The lock is derived from the
// first selection and clears when the group empties.
func (s *Session) lockedCost() *int32 {
	group := s.CurrentGroup()
	if !group.ExactBudgetRequired || len(s.selections[s.step]) == 0 {
		return nil
	}
	opt := group.Option(s.selections[s.step][0].optionID)
	if opt == nil {
		return nil
	}
	return &opt.SelectionCost
}

// Select applies one user choice to the current group. The group id must
// match the current step; the whole operation is rejected, with the session
// unchanged, when the resulting selection would break the group's max count
// or point budget.
func (s *Session) Select(groupID, optionID uuid.UUID) error {
	if s.confirmed {
		return ErrSessionComplete
	}
	group := s.CurrentGroup()
	if group.ID != groupID {
		return ErrNotCurrentGroup
	}
	opt := group.Option(optionID)
	if opt == nil {
		return ErrUnknownOption
	}
	if lock := s.lockedCost(); lock != nil && opt.SelectionCost != *lock {
		return ErrCostLocked
	}

	next := applyChoice(group, s.selections[s.step], *opt)

	// Deselections always shrink usage and need no budget check.
	items := itemsUsed(next)
	points := pointsUsed(group, next)
	if max := group.EffectiveMaxSelections(); max != nil && items > *max {
		return ErrMaxSelectionsReached
	}
	if points > group.SelectionBudget {
		return ErrBudgetExceeded
	}

	s.selections[s.step] = next
	return nil
}

// applyChoice returns the group's selection list after choosing opt,
// following the repeat / radio / toggle rules.
func applyChoice(group catalog.ModifierGroup, cur []entry, opt catalog.ModifierOption) []entry {
	if group.AllowRepeatedSelections {
		next := cloneEntries(cur)
		for i := range next {
			if next[i].optionID == opt.ID {
				next[i].quantity++
				return next
			}
		}
		return append(next, entry{optionID: opt.ID, quantity: 1})
	}

	if max := group.EffectiveMaxSelections(); max != nil && *max == 1 {
		// Radio semantics: any choice replaces the whole group selection.
		return []entry{{optionID: opt.ID, quantity: 1}}
	}

	// Toggle semantics.
	next := make([]entry, 0, len(cur)+1)
	removed := false
	for _, e := range cur {
		if e.optionID == opt.ID {
			removed = true
			continue
		}
		next = append(next, e)
	}
	if !removed {
		next = append(next, entry{optionID: opt.ID, quantity: 1})
	}
	return next
}

// OptionSelectable reports whether an option should be offered for
// selection in the current group. Hidden options are those locked out by
// an exact-budget cost mismatch, those that would blow the budget, and any
// unselected option once the group's cap or budget is reached.
func (s *Session) OptionSelectable(optionID uuid.UUID) bool {
	group := s.CurrentGroup()
	opt := group.Option(optionID)
	if opt == nil {
		return false
	}
	if lock := s.lockedCost(); lock != nil && opt.SelectionCost != *lock {
		return false
	}
	if s.SelectedQuantity(optionID) > 0 {
		return true
	}
	if s.PointsUsed()+opt.SelectionCost > group.SelectionBudget {
		return false
	}
	if max := group.EffectiveMaxSelections(); max != nil && s.ItemsUsed() >= *max {
		return false
	}
	if s.PointsUsed() >= group.SelectionBudget {
		return false
	}
	return true
}

// ShouldAutoAdvance reports whether the current group is full enough that
// the wizard should move on by itself. Timing (debounce) is the caller's
// concern; in a non-interactive flow the advance may be immediate.
func (s *Session) ShouldAutoAdvance() bool {
	if s.confirmed {
		return false
	}
	items := s.ItemsUsed()
	if items == 0 {
		return false
	}
	group := s.CurrentGroup()
	if max := group.EffectiveMaxSelections(); max != nil && items >= *max {
		return true
	}
	return s.PointsUsed() >= group.SelectionBudget
}

// Advance control labels.
const (
	LabelSkip    = "Skip"
	LabelNext    = "Next"
	LabelConfirm = "Confirm"
)

// AdvanceControl decides whether a manual advance control is shown for the
// current group and with which label. Groups that always auto-advance
// (fixed quantity, or exact-budget groups that must land on the budget)
// never show the control.
func (s *Session) AdvanceControl() (visible bool, label string) {
	if s.confirmed {
		return false, ""
	}
	group := s.CurrentGroup()
	if max := group.EffectiveMaxSelections(); max != nil && group.MinSelection == *max {
		return false, ""
	}
	if group.ExactBudgetRequired {
		return false, ""
	}
	if !s.IsMinMet() {
		return false, ""
	}
	switch {
	case group.MinSelection == 0 && s.ItemsUsed() == 0:
		return true, LabelSkip
	case s.step == len(s.product.ModifierGroups)-1:
		return true, LabelConfirm
	default:
		return true, LabelNext
	}
}

// groupSatisfied reports whether the current group permits leaving forward.
func (s *Session) groupSatisfied() bool {
	if !s.IsMinMet() {
		return false
	}
	group := s.CurrentGroup()
	if group.ExactBudgetRequired && s.PointsUsed() != group.SelectionBudget {
		return false
	}
	return true
}

// Advance moves forward one step; advancing past the last group confirms
// the session.
func (s *Session) Advance() error {
	if s.confirmed {
		return ErrSessionComplete
	}
	if !s.groupSatisfied() {
		return ErrGroupNotSatisfied
	}
	if s.step == len(s.product.ModifierGroups)-1 {
		s.confirmed = true
		return nil
	}
	s.step++
	return nil
}

// Retreat moves back one step, discarding the selections of the group
// being left. Re-entering a step always starts empty. No-op on step 0.
func (s *Session) Retreat() {
	if s.confirmed || s.step == 0 {
		return
	}
	s.selections[s.step] = nil
	s.step--
}

// Confirm finishes the session from the last group and returns the
// flattened modifier list, groups in display order, selections in the
// order they were made.
func (s *Session) Confirm() ([]Chosen, error) {
	if !s.confirmed {
		if s.step != len(s.product.ModifierGroups)-1 {
			return nil, ErrNotLastGroup
		}
		if !s.groupSatisfied() {
			return nil, ErrGroupNotSatisfied
		}
		s.confirmed = true
	}
	return s.Result(), nil
}

// Result returns the flattened modifier list for the session so far.
func (s *Session) Result() []Chosen {
	var out []Chosen
	for i, group := range s.product.ModifierGroups {
		for _, e := range s.selections[i] {
			if opt := group.Option(e.optionID); opt != nil {
				out = append(out, Chosen{Option: *opt, Quantity: e.quantity})
			}
		}
	}
	return out
}

// ItemPrice is the product price plus all selected modifier adjustments.
func (s *Session) ItemPrice() decimal.Decimal {
	price := s.product.Price
	for _, c := range s.Result() {
		price = price.Add(c.Option.PriceAdjustment.Mul(decimal.NewFromInt32(c.Quantity)))
	}
	return price
}

func itemsUsed(entries []entry) int32 {
	var n int32
	for _, e := range entries {
		n += e.quantity
	}
	return n
}

func pointsUsed(group catalog.ModifierGroup, entries []entry) int32 {
	var n int32
	for _, e := range entries {
		if opt := group.Option(e.optionID); opt != nil {
			n += e.quantity * opt.SelectionCost
		}
	}
	return n
}

func cloneEntries(entries []entry) []entry {
	next := make([]entry, len(entries))
	copy(next, entries)
	return next
}
