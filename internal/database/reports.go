package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type SalesByMethodRow struct {
	Method       string
	PaymentCount int64
	TotalTaken   pgtype.Numeric
}

const getSalesByMethod = `
SELECT p.method, COUNT(*), COALESCE(SUM(p.amount), 0)
FROM payments p
JOIN orders o ON o.id = p.order_id
WHERE o.status = 'PAID'
  AND o.paid_at >= $1
  AND o.paid_at < $2
GROUP BY p.method
ORDER BY p.method
`

// GetSalesByMethod breaks down takings by payment method for paid orders
// in the half-open interval [from, to).
func (q *Queries) GetSalesByMethod(ctx context.Context, from, to pgtype.Timestamptz) ([]SalesByMethodRow, error) {
	rows, err := q.db.Query(ctx, getSalesByMethod, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SalesByMethodRow
	for rows.Next() {
		var r SalesByMethodRow
		if err := rows.Scan(&r.Method, &r.PaymentCount, &r.TotalTaken); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type SalesSummaryRow struct {
	OrderCount  int64
	Subtotal    pgtype.Numeric
	TotalAmount pgtype.Numeric
}

const getSalesSummary = `
SELECT COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE status = 'PAID'
  AND paid_at >= $1
  AND paid_at < $2
`

func (q *Queries) GetSalesSummary(ctx context.Context, from, to pgtype.Timestamptz) (SalesSummaryRow, error) {
	var r SalesSummaryRow
	err := q.db.QueryRow(ctx, getSalesSummary, from, to).Scan(&r.OrderCount, &r.Subtotal, &r.TotalAmount)
	return r, err
}

type VoidSummaryRow struct {
	VoidType  string
	ItemCount int64
	UnitCount int64
	LostValue pgtype.Numeric
}

const getVoidSummary = `
SELECT i.void_type, COUNT(*), COALESCE(SUM(i.quantity), 0),
       COALESCE(SUM(i.price_at_time_of_order * i.quantity), 0)
FROM order_items i
JOIN orders o ON o.id = i.order_id
WHERE i.status = 'VOIDED'
  AND o.paid_at >= $1
  AND o.paid_at < $2
GROUP BY i.void_type
ORDER BY i.void_type
`

// GetVoidSummary tallies voided items by void type. LostValue is based on
// the captured unit price and ignores modifiers and discounts; it is a
// stock-loss indicator, not an accounting figure.
func (q *Queries) GetVoidSummary(ctx context.Context, from, to pgtype.Timestamptz) ([]VoidSummaryRow, error) {
	rows, err := q.db.Query(ctx, getVoidSummary, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []VoidSummaryRow
	for rows.Next() {
		var r VoidSummaryRow
		if err := rows.Scan(&r.VoidType, &r.ItemCount, &r.UnitCount, &r.LostValue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
