// Package pricing implements the order pricing engine: a pure, in-memory
// cart whose subtotal and total are always a deterministic function of its
// items, their modifiers, and the attached discounts. The engine performs
// no I/O; the order service rebuilds an Order from storage, applies one
// mutation, and persists the recomputed result in a single transaction.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/enum"
)

// ItemModifier is one finalized modifier on a line item. The list order is
// significant: two items consolidate only when their modifier lists match
// option-for-option in the same order.
type ItemModifier struct {
	OptionID        uuid.UUID
	Name            string
	PriceAdjustment decimal.Decimal
	Quantity        int32
}

// Item is one cart line. PriceAtTimeOfOrder snapshots the product price at
// add-time and never changes afterwards, so later catalog edits cannot
// silently reprice open orders.
type Item struct {
	ID                 uuid.UUID
	ProductID          uuid.UUID
	ProductName        string
	Quantity           int32
	PriceAtTimeOfOrder decimal.Decimal
	Modifiers          []ItemModifier
	Comment            string
	Discount           *catalog.Discount
	Status             string // enum.ItemStatusActive or enum.ItemStatusVoided
	VoidType           string // enum.VoidTypeShort or enum.VoidTypeLong when voided
}

// Payment is one proposed or recorded payment against an order.
type Payment struct {
	Method string
	Amount decimal.Decimal
}

// Order is the cart. Subtotal and TotalAmount are derived fields, only
// ever written by Recompute.
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	Status      string
	OrderType   string
	TableNumber string
	Comment     string
	Items       []Item
	Discount    *catalog.Discount
	Subtotal    decimal.Decimal
	TotalAmount decimal.Decimal
	Payments    []Payment
}

// ProductSnapshot carries the catalog data AddItem needs. Taking a
// snapshot rather than a *catalog.Product keeps the engine independent of
// how the caller loaded the product.
type ProductSnapshot struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
}

// Item returns the item with the given id, or nil.
func (o *Order) Item(id uuid.UUID) *Item {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// ActiveItemCount counts items still contributing to totals.
func (o *Order) ActiveItemCount() int {
	n := 0
	for i := range o.Items {
		if o.Items[i].Status == enum.ItemStatusActive {
			n++
		}
	}
	return n
}

// allowedTransitions defines valid order status transitions. PAID is
// reached only through finalization, never through a plain status update.
var allowedTransitions = map[string][]string{
	enum.OrderStatusOpen: {enum.OrderStatusHold, enum.OrderStatusCleared},
	enum.OrderStatusHold: {enum.OrderStatusOpen, enum.OrderStatusCleared},
}

// CanTransition reports whether a plain status update from current to
// next is allowed.
func CanTransition(current, next string) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}
