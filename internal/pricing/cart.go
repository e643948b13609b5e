package pricing

import (
	"github.com/google/uuid"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/enum"
)

// AddItem appends a line for the product, or consolidates into an existing
// active line with the same product and an identical ordered modifier
// list. Returns the affected item and whether a new line was created.
func (o *Order) AddItem(p ProductSnapshot, quantity int32, modifiers []ItemModifier) (*Item, bool, error) {
	if o.Status != enum.OrderStatusOpen {
		return nil, false, ErrOrderNotOpen
	}
	if quantity <= 0 {
		quantity = 1
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.Status == enum.ItemStatusActive && it.ProductID == p.ProductID && modifiersEqual(it.Modifiers, modifiers) {
			it.Quantity += quantity
			if err := o.Recompute(); err != nil {
				return nil, false, err
			}
			return it, false, nil
		}
	}
	o.Items = append(o.Items, Item{
		ID:                 uuid.New(),
		ProductID:          p.ProductID,
		ProductName:        p.Name,
		Quantity:           quantity,
		PriceAtTimeOfOrder: p.UnitPrice,
		Modifiers:          modifiers,
		Status:             enum.ItemStatusActive,
	})
	if err := o.Recompute(); err != nil {
		return nil, false, err
	}
	return &o.Items[len(o.Items)-1], true, nil
}

// modifiersEqual compares two finalized modifier lists position by
// position. Order matters: the same options chosen in a different order
// produce a distinct line.
func modifiersEqual(a, b []ItemModifier) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].OptionID != b[i].OptionID || a[i].Quantity != b[i].Quantity {
			return false
		}
	}
	return true
}

// UpdateQuantity sets an item's quantity. A quantity of zero or less
// removes the line entirely.
func (o *Order) UpdateQuantity(itemID uuid.UUID, quantity int32) error {
	if o.Status != enum.OrderStatusOpen {
		return ErrOrderNotOpen
	}
	idx := -1
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}
	if o.Items[idx].Status != enum.ItemStatusActive {
		return ErrItemAlreadyVoided
	}
	if quantity <= 0 {
		o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	} else {
		o.Items[idx].Quantity = quantity
	}
	return o.Recompute()
}

// RemoveItem deletes a line from an open order.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	return o.UpdateQuantity(itemID, 0)
}

// SetItemComment attaches a kitchen note to a line item.
func (o *Order) SetItemComment(itemID uuid.UUID, comment string) error {
	if o.Status != enum.OrderStatusOpen {
		return ErrOrderNotOpen
	}
	it := o.Item(itemID)
	if it == nil {
		return ErrItemNotFound
	}
	it.Comment = comment
	return nil
}

// ApplyOrderDiscount attaches a discount to the whole order, or clears it
// when d is nil. The discount must be active and the current subtotal must
// meet its minimum; once attached it stays attached even if later edits
// drop the subtotal below the minimum, it just stops reducing the total.
func (o *Order) ApplyOrderDiscount(d *catalog.Discount) error {
	if o.Status != enum.OrderStatusOpen {
		return ErrOrderNotOpen
	}
	if err := o.validateDiscount(d); err != nil {
		return err
	}
	o.Discount = d
	return o.Recompute()
}

// ApplyItemDiscount attaches a discount to one line item, or clears it
// when d is nil. The minimum is checked against the order subtotal at
// apply time, same as an order-level discount.
func (o *Order) ApplyItemDiscount(itemID uuid.UUID, d *catalog.Discount) error {
	if o.Status != enum.OrderStatusOpen {
		return ErrOrderNotOpen
	}
	it := o.Item(itemID)
	if it == nil {
		return ErrItemNotFound
	}
	if it.Status != enum.ItemStatusActive {
		return ErrItemAlreadyVoided
	}
	if err := o.validateDiscount(d); err != nil {
		return err
	}
	it.Discount = d
	return o.Recompute()
}

// VoidItem marks a paid item as voided. The line stays on the order for
// the audit trail but contributes zero to all totals. SHORT marks stock
// already consumed (made but not served), LONG marks stock returned.
func (o *Order) VoidItem(itemID uuid.UUID, voidType string) error {
	if o.Status != enum.OrderStatusPaid {
		return ErrOrderNotPaid
	}
	if voidType != enum.VoidTypeShort && voidType != enum.VoidTypeLong {
		return ErrInvalidVoidType
	}
	it := o.Item(itemID)
	if it == nil {
		return ErrItemNotFound
	}
	if it.Status != enum.ItemStatusActive {
		return ErrItemAlreadyVoided
	}
	it.Status = enum.ItemStatusVoided
	it.VoidType = voidType
	return o.Recompute()
}

// VoidAllItems voids every remaining active item on a paid order with the
// same void type. Fails when nothing is left to void.
func (o *Order) VoidAllItems(voidType string) error {
	if o.Status != enum.OrderStatusPaid {
		return ErrOrderNotPaid
	}
	if voidType != enum.VoidTypeShort && voidType != enum.VoidTypeLong {
		return ErrInvalidVoidType
	}
	if o.ActiveItemCount() == 0 {
		return ErrNoActiveItems
	}
	for i := range o.Items {
		if o.Items[i].Status == enum.ItemStatusActive {
			o.Items[i].Status = enum.ItemStatusVoided
			o.Items[i].VoidType = voidType
		}
	}
	return o.Recompute()
}
