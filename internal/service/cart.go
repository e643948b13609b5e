package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/pricing"
	"github.com/tavolo-pos/api/internal/selection"
)

// AddItemRequest carries one confirmed wizard result from a terminal.
type AddItemRequest struct {
	ProductID uuid.UUID
	Quantity  int32
	Comment   string
	Choices   []selection.Choice
}

// AddItem validates the submitted modifier choices by replaying them
// through the selection engine, then adds the line to the order,
// consolidating with an identical existing line.
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, req AddItemRequest) (*pricing.Order, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		product, err := loadProduct(ctx, store, req.ProductID)
		if err != nil {
			return err
		}

		session, err := selection.Replay(product, req.Choices)
		if err != nil {
			return err
		}

		var mods []pricing.ItemModifier
		for _, c := range session.Result() {
			mods = append(mods, pricing.ItemModifier{
				OptionID:        c.Option.ID,
				Name:            c.Option.Name,
				PriceAdjustment: c.Option.PriceAdjustment,
				Quantity:        c.Quantity,
			})
		}

		item, created, err := order.AddItem(pricing.ProductSnapshot{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
		}, req.Quantity, mods)
		if err != nil {
			return err
		}

		if !created {
			return store.UpdateOrderItemQuantity(ctx, database.UpdateOrderItemQuantityParams{
				ID:       item.ID,
				Quantity: item.Quantity,
			})
		}

		if _, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			ID:                 item.ID,
			OrderID:            orderID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			PriceAtTimeOfOrder: decimalToNumeric(item.PriceAtTimeOfOrder),
		}); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
		for i, m := range item.Modifiers {
			if _, err := store.CreateOrderItemModifier(ctx, database.CreateOrderItemModifierParams{
				OrderItemID:     item.ID,
				OptionID:        m.OptionID,
				Name:            m.Name,
				PriceAdjustment: decimalToNumeric(m.PriceAdjustment),
				Quantity:        m.Quantity,
				SortOrder:       int32(i),
			}); err != nil {
				return fmt.Errorf("create order item modifier: %w", err)
			}
		}
		if req.Comment != "" {
			if err := order.SetItemComment(item.ID, req.Comment); err != nil {
				return err
			}
			if err := store.SetOrderItemComment(ctx, database.SetOrderItemCommentParams{
				ID:      item.ID,
				Comment: toText(req.Comment),
			}); err != nil {
				return fmt.Errorf("set item comment: %w", err)
			}
		}
		return nil
	})
}

// UpdateItemQuantity sets a line's quantity; zero removes the line.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int32) (*pricing.Order, error) {
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		if err := order.UpdateQuantity(itemID, quantity); err != nil {
			return err
		}
		if quantity <= 0 {
			return store.DeleteOrderItem(ctx, itemID)
		}
		return store.UpdateOrderItemQuantity(ctx, database.UpdateOrderItemQuantityParams{
			ID:       itemID,
			Quantity: quantity,
		})
	})
}

// SetItemComment attaches a kitchen note to a line.
func (s *OrderService) SetItemComment(ctx context.Context, orderID, itemID uuid.UUID, comment string) (*pricing.Order, error) {
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		if err := order.SetItemComment(itemID, comment); err != nil {
			return err
		}
		return store.SetOrderItemComment(ctx, database.SetOrderItemCommentParams{
			ID:      itemID,
			Comment: toText(comment),
		})
	})
}

// SetOrderComment attaches a note to the whole order.
func (s *OrderService) SetOrderComment(ctx context.Context, orderID uuid.UUID, comment string) (*pricing.Order, error) {
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		if order.Status != enum.OrderStatusOpen {
			return pricing.ErrOrderNotOpen
		}
		order.Comment = comment
		return store.SetOrderComment(ctx, database.SetOrderCommentParams{
			ID:      orderID,
			Comment: toText(comment),
		})
	})
}

// ApplyDiscountRequest targets either the whole order (ItemID nil) or one
// line. A nil DiscountID clears the slot.
type ApplyDiscountRequest struct {
	DiscountID *uuid.UUID
	ItemID     *uuid.UUID
}

// ApplyDiscount attaches or clears a discount on the order or a line.
func (s *OrderService) ApplyDiscount(ctx context.Context, orderID uuid.UUID, req ApplyDiscountRequest) (*pricing.Order, error) {
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		var d *catalog.Discount
		if req.DiscountID != nil {
			row, err := store.GetDiscount(ctx, *req.DiscountID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrDiscountNotFound
				}
				return fmt.Errorf("get discount: %w", err)
			}
			d = discountFromRow(row)
		}

		if req.ItemID != nil {
			if err := order.ApplyItemDiscount(*req.ItemID, d); err != nil {
				return err
			}
			return store.SetOrderItemDiscount(ctx, database.SetOrderItemDiscountParams{
				ID:         *req.ItemID,
				DiscountID: toUUID(req.DiscountID),
			})
		}

		if err := order.ApplyOrderDiscount(d); err != nil {
			return err
		}
		return store.SetOrderDiscount(ctx, database.SetOrderDiscountParams{
			ID:         orderID,
			DiscountID: toUUID(req.DiscountID),
		})
	})
}
