package selection

import (
	"github.com/google/uuid"
	"github.com/tavolo-pos/api/internal/catalog"
)

// Choice is one submitted modifier choice, as sent by a POS terminal after
// its local wizard confirmed.
type Choice struct {
	OptionID uuid.UUID
	Quantity int32
}

// Replay re-applies a submitted choice list through a fresh session,
// enforcing every group rule server-side before an item is accepted onto
// an order. The terminal already ran the same engine interactively, so a
// replay failure means a stale catalog or a misbehaving client. Returns
// the confirmed session on success.
func Replay(product catalog.Product, choices []Choice) (*Session, error) {
	s := NewSession(product)

	// Index each choice by the group owning its option, preserving order.
	perGroup := make([][]Choice, len(product.ModifierGroups))
	for _, c := range choices {
		gi := -1
		for i, group := range product.ModifierGroups {
			if group.Option(c.OptionID) != nil {
				gi = i
				break
			}
		}
		if gi < 0 {
			return nil, ErrUnknownOption
		}
		perGroup[gi] = append(perGroup[gi], c)
	}

	for i, group := range product.ModifierGroups {
		for _, c := range perGroup[i] {
			if c.Quantity <= 0 {
				return nil, ErrUnknownOption
			}
			if !group.AllowRepeatedSelections {
				if c.Quantity != 1 {
					return nil, ErrRepeatNotAllowed
				}
				if err := s.Select(group.ID, c.OptionID); err != nil {
					return nil, err
				}
				continue
			}
			for n := int32(0); n < c.Quantity; n++ {
				if err := s.Select(group.ID, c.OptionID); err != nil {
					return nil, err
				}
			}
		}
		if err := s.Advance(); err != nil {
			return nil, err
		}
	}

	return s, nil
}
