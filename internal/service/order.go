// Package service holds the business logic between the HTTP handlers and
// the storage layer. Order mutations follow one shape: begin a
// transaction, lock the order row, rebuild the in-memory cart, run the
// engine, persist the delta and the recomputed totals, commit.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/pricing"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrDiscountNotFound        = errors.New("discount not found")
	ErrInvalidOrderType        = errors.New("invalid order_type")
	ErrInvalidQuantity         = errors.New("quantity must be > 0")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNoPayments              = errors.New("at least one payment is required")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) error
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, id uuid.UUID) (database.Order, error)
	SetOrderDiscount(ctx context.Context, arg database.SetOrderDiscountParams) error
	SetOrderComment(ctx context.Context, arg database.SetOrderCommentParams) error

	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListModifierGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ModifierGroup, error)
	ListModifierOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ModifierOption, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (database.Discount, error)

	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderItemQuantity(ctx context.Context, arg database.UpdateOrderItemQuantityParams) error
	DeleteOrderItem(ctx context.Context, id uuid.UUID) error
	SetOrderItemComment(ctx context.Context, arg database.SetOrderItemCommentParams) error
	SetOrderItemDiscount(ctx context.Context, arg database.SetOrderItemDiscountParams) error
	VoidOrderItem(ctx context.Context, arg database.VoidOrderItemParams) error
	CreateOrderItemModifier(ctx context.Context, arg database.CreateOrderItemModifierParams) (database.OrderItemModifier, error)
	ListOrderItemModifiers(ctx context.Context, orderID uuid.UUID) ([]database.OrderItemModifier, error)

	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.Payment, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrderRequest is the validated input for opening an order.
type CreateOrderRequest struct {
	OrderType   string
	TableNumber string
	Comment     string
}

// CreateOrder opens an empty order with the next receipt number. Retries
// on order_number unique violations, which happen when concurrent
// transactions read the same MAX.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*pricing.Order, error) {
	if err := validateOrderType(req.OrderType); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		order, err := s.createOrderTx(ctx, req)
		if err == nil {
			return order, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "idx_orders_number_per_day"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*pricing.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}

	row, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber: fmt.Sprintf("TVL-%03d", nextNum),
		OrderType:   req.OrderType,
		TableNumber: toText(req.TableNumber),
		Comment:     toText(req.Comment),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &pricing.Order{
		ID:          row.ID,
		OrderNumber: row.OrderNumber,
		Status:      row.Status,
		OrderType:   row.OrderType,
		TableNumber: req.TableNumber,
		Comment:     req.Comment,
	}, nil
}

// GetOrder returns the fully rebuilt order with fresh totals.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*pricing.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	row, err := store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	order, err := buildOrder(ctx, store, row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// ListOrders returns order summary rows for one status.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]database.Order, error) {
	if !isValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	rows, err := store.ListOrdersByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return rows, nil
}

// UpdateStatus applies a plain status transition (hold, reopen, clear).
// PAID is only reachable through FinalizeOrder.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*pricing.Order, error) {
	if !isValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}
	return s.withOrder(ctx, orderID, func(ctx context.Context, store OrderStore, order *pricing.Order) error {
		if !pricing.CanTransition(order.Status, status) {
			return ErrInvalidStatusTransition
		}
		if _, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: orderID, Status: status}); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		order.Status = status
		return nil
	})
}

// withOrder runs fn inside a transaction with the order row locked and
// the cart rebuilt, then persists totals and commits.
func (s *OrderService) withOrder(ctx context.Context, orderID uuid.UUID, fn func(ctx context.Context, store OrderStore, order *pricing.Order) error) (*pricing.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	row, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	order, err := buildOrder(ctx, store, row)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, store, order); err != nil {
		return nil, err
	}
	if err := persistTotals(ctx, store, order); err != nil {
		return nil, fmt.Errorf("persist totals: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

func validateOrderType(s string) error {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return nil
	}
	return ErrInvalidOrderType
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusOpen, enum.OrderStatusHold, enum.OrderStatusPaid, enum.OrderStatusCleared:
		return true
	}
	return false
}

func isValidPaymentMethod(s string) bool {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodCreditAccount:
		return true
	}
	return false
}
