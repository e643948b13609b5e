package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/pricing"
)

// PaymentRequest is one payment in a finalization.
type PaymentRequest struct {
	Method string
	Amount decimal.Decimal
}

// FinalizeOrder reconciles the payments against the freshly recomputed
// total, records them, and marks the order PAID. The whole operation is
// one transaction with the order row locked, so no edit can slip between
// the reconciliation and the status change.
func (s *OrderService) FinalizeOrder(ctx context.Context, orderID uuid.UUID, payments []PaymentRequest) (*pricing.Order, error) {
	if len(payments) == 0 {
		return nil, ErrNoPayments
	}
	for _, p := range payments {
		if !isValidPaymentMethod(p.Method) {
			return nil, ErrInvalidPaymentMethod
		}
	}
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		proposed := make([]pricing.Payment, 0, len(payments))
		for _, p := range payments {
			proposed = append(proposed, pricing.Payment{Method: p.Method, Amount: p.Amount})
		}
		if err := order.Finalize(proposed); err != nil {
			return err
		}
		for _, p := range proposed {
			if _, err := store.CreatePayment(ctx, database.CreatePaymentParams{
				OrderID: orderID,
				Method:  p.Method,
				Amount:  decimalToNumeric(p.Amount),
			}); err != nil {
				return fmt.Errorf("create payment: %w", err)
			}
		}
		if _, err := store.MarkOrderPaid(ctx, orderID); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		return nil
	})
}

// VoidItem voids one item on a paid order. Manager operation.
func (s *OrderService) VoidItem(ctx context.Context, orderID, itemID uuid.UUID, voidType string) (*pricing.Order, error) {
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		if err := order.VoidItem(itemID, voidType); err != nil {
			return err
		}
		return store.VoidOrderItem(ctx, database.VoidOrderItemParams{ID: itemID, VoidType: voidType})
	})
}

// VoidOrder voids every remaining active item on a paid order.
func (s *OrderService) VoidOrder(ctx context.Context, orderID uuid.UUID, voidType string) (*pricing.Order, error) {
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		var active []uuid.UUID
		for _, it := range order.Items {
			if it.Status == enum.ItemStatusActive {
				active = append(active, it.ID)
			}
		}
		if err := order.VoidAllItems(voidType); err != nil {
			return err
		}
		for _, id := range active {
			if err := store.VoidOrderItem(ctx, database.VoidOrderItemParams{ID: id, VoidType: voidType}); err != nil {
				return fmt.Errorf("void item: %w", err)
			}
		}
		return nil
	})
}
