package database

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Product struct {
	ID        uuid.UUID
	Name      string
	Price     pgtype.Numeric
	IsActive  bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type ModifierGroup struct {
	ID                               uuid.UUID
	Name                             string
	MinSelection                     int32
	SelectionBudget                  int32
	MaxSelections                    pgtype.Int4
	MaxSelectionsSyncedToOptionCount bool
	AllowRepeatedSelections          bool
	ExactBudgetRequired              bool
	CreatedAt                        pgtype.Timestamptz
	UpdatedAt                        pgtype.Timestamptz
}

type ModifierOption struct {
	ID              uuid.UUID
	GroupID         uuid.UUID
	Name            string
	PriceAdjustment pgtype.Numeric
	SelectionCost   int32
	SortOrder       int32
}

type Discount struct {
	ID                 uuid.UUID
	Name               string
	Type               string
	Value              pgtype.Numeric
	MinimumOrderAmount pgtype.Numeric
	IsActive           bool
}

type Order struct {
	ID          uuid.UUID
	OrderNumber string
	Status      string
	OrderType   string
	TableNumber pgtype.Text
	Comment     pgtype.Text
	DiscountID  pgtype.UUID
	Subtotal    pgtype.Numeric
	TotalAmount pgtype.Numeric
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
	PaidAt      pgtype.Timestamptz
}

type OrderItem struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	ProductID          uuid.UUID
	ProductName        string
	Quantity           int32
	PriceAtTimeOfOrder pgtype.Numeric
	Comment            pgtype.Text
	DiscountID         pgtype.UUID
	Status             string
	VoidType           pgtype.Text
	CreatedAt          pgtype.Timestamptz
}

type OrderItemModifier struct {
	ID              uuid.UUID
	OrderItemID     uuid.UUID
	OptionID        uuid.UUID
	Name            string
	PriceAdjustment pgtype.Numeric
	Quantity        int32
	SortOrder       int32
}

type Payment struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Method    string
	Amount    pgtype.Numeric
	CreatedAt pgtype.Timestamptz
}
