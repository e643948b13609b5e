package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/enum"
)

var oneHundred = decimal.NewFromInt(100)

// Total computes the item's line total: (unit price + modifier
// adjustments) x quantity, less the item discount. Voided items always
// total zero. PERCENT discounts apply to the gross line total; FIXED
// discounts are per unit and multiply by quantity.
func (i *Item) Total() (decimal.Decimal, error) {
	if i.Status == enum.ItemStatusVoided {
		return decimal.Zero, nil
	}
	unit := i.PriceAtTimeOfOrder
	for _, m := range i.Modifiers {
		unit = unit.Add(m.PriceAdjustment.Mul(decimal.NewFromInt32(m.Quantity)))
	}
	gross := unit.Mul(decimal.NewFromInt32(i.Quantity))
	if i.Discount == nil {
		return gross, nil
	}
	switch i.Discount.Type {
	case enum.DiscountTypePercent:
		return gross.Sub(gross.Mul(i.Discount.Value).Div(oneHundred)), nil
	case enum.DiscountTypeFixed:
		return gross.Sub(i.Discount.Value.Mul(decimal.NewFromInt32(i.Quantity))), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown item discount type %q", ErrCorruptTotals, i.Discount.Type)
	}
}

// Recompute re-derives Subtotal and TotalAmount from the items and
// discounts. Every mutation ends with a Recompute, so the stored totals
// never drift from the item list. The order-level discount only takes
// effect while the subtotal meets its minimum; an attached discount whose
// minimum is no longer met simply contributes nothing.
func (o *Order) Recompute() error {
	subtotal := decimal.Zero
	for i := range o.Items {
		t, err := o.Items[i].Total()
		if err != nil {
			return err
		}
		subtotal = subtotal.Add(t)
	}
	o.Subtotal = subtotal

	total := subtotal
	if d := o.Discount; d != nil && subtotal.GreaterThanOrEqual(d.MinimumOrderAmount) {
		switch d.Type {
		case enum.DiscountTypePercent:
			total = total.Sub(total.Mul(d.Value).Div(oneHundred))
		case enum.DiscountTypeFixed:
			total = total.Sub(d.Value)
		default:
			return fmt.Errorf("%w: unknown order discount type %q", ErrCorruptTotals, d.Type)
		}
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.TotalAmount = total
	return nil
}

// validateDiscount checks a discount against the current subtotal before
// it is attached. nil is always valid (it clears the slot).
func (o *Order) validateDiscount(d *catalog.Discount) error {
	if d == nil {
		return nil
	}
	if !d.IsActive {
		return ErrDiscountInactive
	}
	if o.Subtotal.LessThan(d.MinimumOrderAmount) {
		return ErrDiscountMinimumNotMet
	}
	return nil
}
