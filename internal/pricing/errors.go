package pricing

import "errors"

// Errors returned by the pricing engine, grouped by how callers should
// react: not-found errors mean a bad reference and leave the order
// unchanged; state errors name an operation attempted in the wrong order
// status; ErrAmountMismatch tells the caller to re-derive payment amounts
// against the fresh total; ErrCorruptTotals marks a computation that must
// never be persisted.
var (
	ErrItemNotFound = errors.New("order item not found")

	ErrOrderNotOpen          = errors.New("order is not OPEN")
	ErrOrderNotPaid          = errors.New("order is not PAID")
	ErrItemAlreadyVoided     = errors.New("order item is already voided")
	ErrNoActiveItems         = errors.New("order has no active items")
	ErrDiscountInactive      = errors.New("discount is not active")
	ErrDiscountMinimumNotMet = errors.New("order subtotal is below the discount minimum")
	ErrInvalidVoidType       = errors.New("invalid void type")

	ErrAmountMismatch = errors.New("payment amounts do not match order total")

	ErrCorruptTotals = errors.New("total computation produced an invalid result")
)

// IsStateError reports whether err names an operation attempted against
// the wrong order or item state.
func IsStateError(err error) bool {
	return errors.Is(err, ErrOrderNotOpen) ||
		errors.Is(err, ErrOrderNotPaid) ||
		errors.Is(err, ErrItemAlreadyVoided) ||
		errors.Is(err, ErrNoActiveItems) ||
		errors.Is(err, ErrDiscountInactive) ||
		errors.Is(err, ErrDiscountMinimumNotMet) ||
		errors.Is(err, ErrInvalidVoidType)
}
