package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "DRAFT"
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusVerifying       OrderStatus = "VERIFYING"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusExpired         OrderStatus = "EXPIRED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusError           OrderStatus = "ERROR"
)

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusExpired, OrderStatusCancelled, OrderStatusError:
		return true
	}
	return false
}

// PaymentStatus is the normalized answer of the verification service.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

type OrderLine struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Order struct {
	ID              uuid.UUID
	Lines           []OrderLine
	Amount          decimal.Decimal
	Currency        Currency
	MerchantAccount string
	BillReference   string
	Payload         string
	VerificationKey string
	Status          OrderStatus
	CreatedAt       time.Time
	ExpiresAt       time.Time
}
