package database

import (
	"context"

	"github.com/google/uuid"
)

const getDiscount = `
SELECT id, name, type, value, minimum_order_amount, is_active
FROM discounts
WHERE id = $1
`

func (q *Queries) GetDiscount(ctx context.Context, id uuid.UUID) (Discount, error) {
	row := q.db.QueryRow(ctx, getDiscount, id)
	var d Discount
	err := row.Scan(&d.ID, &d.Name, &d.Type, &d.Value, &d.MinimumOrderAmount, &d.IsActive)
	return d, err
}

const listActiveDiscounts = `
SELECT id, name, type, value, minimum_order_amount, is_active
FROM discounts
WHERE is_active = true
ORDER BY name
`

func (q *Queries) ListActiveDiscounts(ctx context.Context) ([]Discount, error) {
	rows, err := q.db.Query(ctx, listActiveDiscounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Discount
	for rows.Next() {
		var d Discount
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Value, &d.MinimumOrderAmount, &d.IsActive); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
