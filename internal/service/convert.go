package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/pricing"
)

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func toText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func discountFromRow(row database.Discount) *catalog.Discount {
	return &catalog.Discount{
		ID:                 row.ID,
		Name:               row.Name,
		Type:               row.Type,
		Value:              numericToDecimal(row.Value),
		MinimumOrderAmount: numericToDecimal(row.MinimumOrderAmount),
		IsActive:           row.IsActive,
	}
}

// loadProduct assembles the full catalog view of a product: its row, its
// modifier groups in wizard order, and each group's options.
func loadProduct(ctx context.Context, store OrderStore, id uuid.UUID) (catalog.Product, error) {
	row, err := store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, ErrProductNotFound
		}
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}
	if !row.IsActive {
		return catalog.Product{}, ErrProductNotFound
	}

	groups, err := store.ListModifierGroupsByProduct(ctx, id)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("list modifier groups: %w", err)
	}

	p := catalog.Product{
		ID:    row.ID,
		Name:  row.Name,
		Price: numericToDecimal(row.Price),
	}
	for order, g := range groups {
		options, err := store.ListModifierOptionsByGroup(ctx, g.ID)
		if err != nil {
			return catalog.Product{}, fmt.Errorf("list modifier options: %w", err)
		}
		group := catalog.ModifierGroup{
			ID:                               g.ID,
			Name:                             g.Name,
			MinSelection:                     g.MinSelection,
			SelectionBudget:                  g.SelectionBudget,
			MaxSelectionsSyncedToOptionCount: g.MaxSelectionsSyncedToOptionCount,
			AllowRepeatedSelections:          g.AllowRepeatedSelections,
			ExactBudgetRequired:              g.ExactBudgetRequired,
			DisplayOrder:                     int32(order),
		}
		if g.MaxSelections.Valid {
			max := g.MaxSelections.Int32
			group.MaxSelections = &max
		}
		for _, o := range options {
			group.Options = append(group.Options, catalog.ModifierOption{
				ID:              o.ID,
				Name:            o.Name,
				PriceAdjustment: numericToDecimal(o.PriceAdjustment),
				SelectionCost:   o.SelectionCost,
				SortOrder:       o.SortOrder,
			})
		}
		p.ModifierGroups = append(p.ModifierGroups, group)
	}
	return p, nil
}

// buildOrder reconstructs the in-memory pricing order from its stored
// rows and recomputes totals, so every mutation starts from a consistent
// state even if stored totals have drifted.
func buildOrder(ctx context.Context, store OrderStore, row database.Order) (*pricing.Order, error) {
	o := &pricing.Order{
		ID:          row.ID,
		OrderNumber: row.OrderNumber,
		Status:      row.Status,
		OrderType:   row.OrderType,
		TableNumber: textOrEmpty(row.TableNumber),
		Comment:     textOrEmpty(row.Comment),
	}

	if row.DiscountID.Valid {
		d, err := store.GetDiscount(ctx, uuid.UUID(row.DiscountID.Bytes))
		if err != nil {
			return nil, fmt.Errorf("get order discount: %w", err)
		}
		o.Discount = discountFromRow(d)
	}

	items, err := store.ListOrderItems(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	mods, err := store.ListOrderItemModifiers(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("list order item modifiers: %w", err)
	}
	modsByItem := make(map[uuid.UUID][]pricing.ItemModifier)
	for _, m := range mods {
		modsByItem[m.OrderItemID] = append(modsByItem[m.OrderItemID], pricing.ItemModifier{
			OptionID:        m.OptionID,
			Name:            m.Name,
			PriceAdjustment: numericToDecimal(m.PriceAdjustment),
			Quantity:        m.Quantity,
		})
	}

	for _, it := range items {
		item := pricing.Item{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			ProductName:        it.ProductName,
			Quantity:           it.Quantity,
			PriceAtTimeOfOrder: numericToDecimal(it.PriceAtTimeOfOrder),
			Modifiers:          modsByItem[it.ID],
			Comment:            textOrEmpty(it.Comment),
			Status:             it.Status,
			VoidType:           textOrEmpty(it.VoidType),
		}
		if it.DiscountID.Valid {
			d, err := store.GetDiscount(ctx, uuid.UUID(it.DiscountID.Bytes))
			if err != nil {
				return nil, fmt.Errorf("get item discount: %w", err)
			}
			item.Discount = discountFromRow(d)
		}
		o.Items = append(o.Items, item)
	}

	payments, err := store.ListPaymentsByOrder(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	for _, p := range payments {
		o.Payments = append(o.Payments, pricing.Payment{
			Method: p.Method,
			Amount: numericToDecimal(p.Amount),
		})
	}

	if err := o.Recompute(); err != nil {
		return nil, err
	}
	return o, nil
}

// persistTotals writes the engine's derived totals back to the order row.
func persistTotals(ctx context.Context, store OrderStore, o *pricing.Order) error {
	return store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:          o.ID,
		Subtotal:    decimalToNumeric(o.Subtotal),
		TotalAmount: decimalToNumeric(o.TotalAmount),
	})
}
