package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/enum"
)

// reconcileTolerance absorbs the sub-cent drift a client accumulates when
// it splits a total across payment methods with float arithmetic.
var reconcileTolerance = decimal.RequireFromString("0.015")

// Reconcile verifies that the proposed payments cover the order total.
// Each payment must be positive and the sum must match the freshly
// recomputed total within tolerance. Finalization always reconciles
// against the server-side total, never against amounts echoed by the
// client.
func Reconcile(payments []Payment, total decimal.Decimal) error {
	if len(payments) == 0 {
		return fmt.Errorf("%w: no payments", ErrAmountMismatch)
	}
	sum := decimal.Zero
	for _, p := range payments {
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: payment amount %s is not positive", ErrAmountMismatch, p.Amount)
		}
		sum = sum.Add(p.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(reconcileTolerance) {
		return fmt.Errorf("%w: payments total %s, order total %s", ErrAmountMismatch, sum, total)
	}
	return nil
}

// Finalize reconciles the payments against the current total, records
// them, and moves the order to PAID. Only OPEN orders can be finalized.
func (o *Order) Finalize(payments []Payment) error {
	if o.Status != enum.OrderStatusOpen {
		return ErrOrderNotOpen
	}
	if err := o.Recompute(); err != nil {
		return err
	}
	if err := Reconcile(payments, o.TotalAmount); err != nil {
		return err
	}
	o.Payments = append(o.Payments, payments...)
	o.Status = enum.OrderStatusPaid
	return nil
}
