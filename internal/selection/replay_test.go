package selection

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/catalog"
)

func TestReplay_ValidChoices(t *testing.T) {
	p := burger()
	size, toppings := p.ModifierGroups[0], p.ModifierGroups[1]
	large := size.Options[1]
	cheese := toppings.Options[0]

	s, err := Replay(p, []Choice{
		{OptionID: large.ID, Quantity: 1},
		{OptionID: cheese.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !s.Confirmed() {
		t.Fatal("replayed session must be confirmed")
	}
	if !s.ItemPrice().Equal(decimal.RequireFromString("11.00")) {
		t.Fatalf("expected 11.00, got %s", s.ItemPrice())
	}
}

func TestReplay_RepeatedQuantities(t *testing.T) {
	shots := catalog.ModifierGroup{
		ID:                      uuid.New(),
		Name:                    "Extra shots",
		SelectionBudget:         4,
		AllowRepeatedSelections: true,
		Options: []catalog.ModifierOption{
			opt("Espresso shot", "0.50", 1),
		},
	}
	p := catalog.Product{ID: uuid.New(), Name: "Latte", Price: decimal.RequireFromString("4.00"), ModifierGroups: []catalog.ModifierGroup{shots}}

	s, err := Replay(p, []Choice{{OptionID: shots.Options[0].ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	result := s.Result()
	if len(result) != 1 || result[0].Quantity != 3 {
		t.Fatalf("expected one choice with quantity 3, got %+v", result)
	}
}

func TestReplay_QuantityOnNonRepeatGroup(t *testing.T) {
	p := burger()
	toppings := p.ModifierGroups[1]
	size := p.ModifierGroups[0]

	_, err := Replay(p, []Choice{
		{OptionID: size.Options[0].ID, Quantity: 1},
		{OptionID: toppings.Options[0].ID, Quantity: 2},
	})
	if !errors.Is(err, ErrRepeatNotAllowed) {
		t.Fatalf("expected ErrRepeatNotAllowed, got: %v", err)
	}
}

func TestReplay_UnknownOption(t *testing.T) {
	p := burger()
	size := p.ModifierGroups[0]
	_, err := Replay(p, []Choice{
		{OptionID: size.Options[0].ID, Quantity: 1},
		{OptionID: uuid.New(), Quantity: 1},
	})
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got: %v", err)
	}
}

func TestReplay_MissingRequiredGroup(t *testing.T) {
	p := burger()
	toppings := p.ModifierGroups[1]

	// Size is required, only a topping was submitted.
	_, err := Replay(p, []Choice{{OptionID: toppings.Options[0].ID, Quantity: 1}})
	if !errors.Is(err, ErrGroupNotSatisfied) {
		t.Fatalf("expected ErrGroupNotSatisfied, got: %v", err)
	}
}

func TestReplay_BudgetViolation(t *testing.T) {
	p := burger()
	size, toppings := p.ModifierGroups[0], p.ModifierGroups[1]

	// cheese(1) + bacon(1) + avocado(2) exceeds the 3 point budget.
	_, err := Replay(p, []Choice{
		{OptionID: size.Options[0].ID, Quantity: 1},
		{OptionID: toppings.Options[0].ID, Quantity: 1},
		{OptionID: toppings.Options[1].ID, Quantity: 1},
		{OptionID: toppings.Options[2].ID, Quantity: 1},
	})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got: %v", err)
	}
}

func TestReplay_NoChoicesOnOptionalProduct(t *testing.T) {
	p := catalog.Product{
		ID:             uuid.New(),
		Name:           "Burger",
		Price:          decimal.RequireFromString("8.00"),
		ModifierGroups: []catalog.ModifierGroup{toppingsGroup()},
	}
	s, err := Replay(p, nil)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !s.Confirmed() || len(s.Result()) != 0 {
		t.Fatal("empty replay over optional groups must confirm with no modifiers")
	}
}
