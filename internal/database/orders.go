package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, status, order_type, table_number, comment,
       discount_id, subtotal, total_amount, created_at, updated_at, paid_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.OrderType, &o.TableNumber, &o.Comment,
		&o.DiscountID, &o.Subtotal, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt,
	)
	return o, err
}

const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0) + 1
FROM orders
WHERE created_at::date = CURRENT_DATE
`

// GetNextOrderNumber returns the next daily receipt sequence number.
// Concurrent callers can race; CreateOrder's unique index catches the
// collision and the service retries.
func (q *Queries) GetNextOrderNumber(ctx context.Context) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber).Scan(&n)
	return n, err
}

type CreateOrderParams struct {
	OrderNumber string
	OrderType   string
	TableNumber pgtype.Text
	Comment     pgtype.Text
}

const createOrder = `
INSERT INTO orders (order_number, status, order_type, table_number, comment, subtotal, total_amount)
VALUES ($1, 'OPEN', $2, $3, $4, 0, 0)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder, arg.OrderNumber, arg.OrderType, arg.TableNumber, arg.Comment))
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR NO KEY UPDATE
`

// GetOrderForUpdate locks the order row for the rest of the transaction,
// so concurrent mutations of the same order serialize instead of
// overwriting each other's totals.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrdersByStatus = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = $1
ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByStatus, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

type UpdateOrderTotalsParams struct {
	ID          uuid.UUID
	Subtotal    pgtype.Numeric
	TotalAmount pgtype.Numeric
}

const updateOrderTotals = `
UPDATE orders
SET subtotal = $2, total_amount = $3, updated_at = now()
WHERE id = $1
`

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) error {
	_, err := q.db.Exec(ctx, updateOrderTotals, arg.ID, arg.Subtotal, arg.TotalAmount)
	return err
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}

const markOrderPaid = `
UPDATE orders
SET status = 'PAID', paid_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) MarkOrderPaid(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderPaid, id))
}

type SetOrderDiscountParams struct {
	ID         uuid.UUID
	DiscountID pgtype.UUID
}

const setOrderDiscount = `
UPDATE orders
SET discount_id = $2, updated_at = now()
WHERE id = $1
`

func (q *Queries) SetOrderDiscount(ctx context.Context, arg SetOrderDiscountParams) error {
	_, err := q.db.Exec(ctx, setOrderDiscount, arg.ID, arg.DiscountID)
	return err
}

type SetOrderCommentParams struct {
	ID      uuid.UUID
	Comment pgtype.Text
}

const setOrderComment = `
UPDATE orders
SET comment = $2, updated_at = now()
WHERE id = $1
`

func (q *Queries) SetOrderComment(ctx context.Context, arg SetOrderCommentParams) error {
	_, err := q.db.Exec(ctx, setOrderComment, arg.ID, arg.Comment)
	return err
}
