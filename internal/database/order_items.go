package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const itemColumns = `id, order_id, product_id, product_name, quantity, price_at_time_of_order,
       comment, discount_id, status, void_type, created_at`

func scanOrderItem(row interface{ Scan(dest ...any) error }) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtTimeOfOrder,
		&it.Comment, &it.DiscountID, &it.Status, &it.VoidType, &it.CreatedAt,
	)
	return it, err
}

type CreateOrderItemParams struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	ProductID          uuid.UUID
	ProductName        string
	Quantity           int32
	PriceAtTimeOfOrder pgtype.Numeric
}

const createOrderItem = `
INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_at_time_of_order, status)
VALUES ($1, $2, $3, $4, $5, $6, 'ACTIVE')
RETURNING ` + itemColumns

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.ID, arg.OrderID, arg.ProductID, arg.ProductName, arg.Quantity, arg.PriceAtTimeOfOrder))
}

const listOrderItems = `
SELECT ` + itemColumns + `
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type UpdateOrderItemQuantityParams struct {
	ID       uuid.UUID
	Quantity int32
}

const updateOrderItemQuantity = `
UPDATE order_items
SET quantity = $2
WHERE id = $1
`

func (q *Queries) UpdateOrderItemQuantity(ctx context.Context, arg UpdateOrderItemQuantityParams) error {
	_, err := q.db.Exec(ctx, updateOrderItemQuantity, arg.ID, arg.Quantity)
	return err
}

const deleteOrderItem = `
DELETE FROM order_items
WHERE id = $1
`

func (q *Queries) DeleteOrderItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItem, id)
	return err
}

type SetOrderItemCommentParams struct {
	ID      uuid.UUID
	Comment pgtype.Text
}

const setOrderItemComment = `
UPDATE order_items
SET comment = $2
WHERE id = $1
`

func (q *Queries) SetOrderItemComment(ctx context.Context, arg SetOrderItemCommentParams) error {
	_, err := q.db.Exec(ctx, setOrderItemComment, arg.ID, arg.Comment)
	return err
}

type SetOrderItemDiscountParams struct {
	ID         uuid.UUID
	DiscountID pgtype.UUID
}

const setOrderItemDiscount = `
UPDATE order_items
SET discount_id = $2
WHERE id = $1
`

func (q *Queries) SetOrderItemDiscount(ctx context.Context, arg SetOrderItemDiscountParams) error {
	_, err := q.db.Exec(ctx, setOrderItemDiscount, arg.ID, arg.DiscountID)
	return err
}

type VoidOrderItemParams struct {
	ID       uuid.UUID
	VoidType string
}

const voidOrderItem = `
UPDATE order_items
SET status = 'VOIDED', void_type = $2
WHERE id = $1
`

func (q *Queries) VoidOrderItem(ctx context.Context, arg VoidOrderItemParams) error {
	_, err := q.db.Exec(ctx, voidOrderItem, arg.ID, arg.VoidType)
	return err
}

type CreateOrderItemModifierParams struct {
	OrderItemID     uuid.UUID
	OptionID        uuid.UUID
	Name            string
	PriceAdjustment pgtype.Numeric
	Quantity        int32
	SortOrder       int32
}

const createOrderItemModifier = `
INSERT INTO order_item_modifiers (order_item_id, option_id, name, price_adjustment, quantity, sort_order)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_item_id, option_id, name, price_adjustment, quantity, sort_order
`

func (q *Queries) CreateOrderItemModifier(ctx context.Context, arg CreateOrderItemModifierParams) (OrderItemModifier, error) {
	row := q.db.QueryRow(ctx, createOrderItemModifier,
		arg.OrderItemID, arg.OptionID, arg.Name, arg.PriceAdjustment, arg.Quantity, arg.SortOrder)
	var m OrderItemModifier
	err := row.Scan(&m.ID, &m.OrderItemID, &m.OptionID, &m.Name, &m.PriceAdjustment, &m.Quantity, &m.SortOrder)
	return m, err
}

const listOrderItemModifiers = `
SELECT m.id, m.order_item_id, m.option_id, m.name, m.price_adjustment, m.quantity, m.sort_order
FROM order_item_modifiers m
JOIN order_items i ON i.id = m.order_item_id
WHERE i.order_id = $1
ORDER BY m.order_item_id, m.sort_order
`

// ListOrderItemModifiers returns all modifiers on all items of an order.
// SortOrder preserves the order the wizard finalized them in, which is
// what line consolidation compares.
func (q *Queries) ListOrderItemModifiers(ctx context.Context, orderID uuid.UUID) ([]OrderItemModifier, error) {
	rows, err := q.db.Query(ctx, listOrderItemModifiers, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItemModifier
	for rows.Next() {
		var m OrderItemModifier
		if err := rows.Scan(&m.ID, &m.OrderItemID, &m.OptionID, &m.Name, &m.PriceAdjustment, &m.Quantity, &m.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
