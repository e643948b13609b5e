package database

import (
	"context"

	"github.com/google/uuid"
)

const getProduct = `
SELECT id, name, price, is_active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listProducts = `
SELECT id, name, price, is_active, created_at, updated_at
FROM products
WHERE is_active = true
ORDER BY name
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const listModifierGroupsByProduct = `
SELECT g.id, g.name, g.min_selection, g.selection_budget, g.max_selections,
       g.max_selections_synced_to_option_count, g.allow_repeated_selections,
       g.exact_budget_required, g.created_at, g.updated_at
FROM modifier_groups g
JOIN product_modifier_groups pg ON pg.group_id = g.id
WHERE pg.product_id = $1
ORDER BY pg.display_order
`

// ListModifierGroupsByProduct returns the product's groups in the order
// the selection wizard walks them.
func (q *Queries) ListModifierGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]ModifierGroup, error) {
	rows, err := q.db.Query(ctx, listModifierGroupsByProduct, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ModifierGroup
	for rows.Next() {
		var g ModifierGroup
		if err := rows.Scan(
			&g.ID, &g.Name, &g.MinSelection, &g.SelectionBudget, &g.MaxSelections,
			&g.MaxSelectionsSyncedToOptionCount, &g.AllowRepeatedSelections,
			&g.ExactBudgetRequired, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const listModifierOptionsByGroup = `
SELECT id, group_id, name, price_adjustment, selection_cost, sort_order
FROM modifier_options
WHERE group_id = $1
ORDER BY sort_order, name
`

func (q *Queries) ListModifierOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]ModifierOption, error) {
	rows, err := q.db.Query(ctx, listModifierOptionsByGroup, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ModifierOption
	for rows.Next() {
		var o ModifierOption
		if err := rows.Scan(&o.ID, &o.GroupID, &o.Name, &o.PriceAdjustment, &o.SelectionCost, &o.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
