package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusOpen    = "OPEN"
	OrderStatusHold    = "HOLD"
	OrderStatusPaid    = "PAID"
	OrderStatusCleared = "CLEARED"
)

const (
	ItemStatusActive = "ACTIVE"
	ItemStatusVoided = "VOIDED"
)

const (
	VoidTypeShort = "SHORT" // assumed entry error
	VoidTypeLong  = "LONG"  // assumed physical waste
)

// ── Reference data labels ──

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

const (
	DiscountTypePercent = "PERCENT"
	DiscountTypeFixed   = "FIXED"
)

const (
	PaymentMethodCash          = "CASH"
	PaymentMethodCard          = "CARD"
	PaymentMethodCreditAccount = "CREDIT_ACCOUNT"
)

const (
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)
