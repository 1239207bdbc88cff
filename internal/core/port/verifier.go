package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/soktep/khqrpay/internal/core/domain"
)

//go:generate mockgen -source=verifier.go -destination=mock/verifier.go -package=mock

// PaymentVerifier is the client-side contract of the external payment-status
// service. A transport failure or an unrecognized service response comes back
// as domain.ErrVerificationUnavailable, never as PaymentStatusUnpaid, so
// callers can tell "definitely not paid yet" from "we don't know".
type PaymentVerifier interface {
	CheckStatus(ctx context.Context, key string) (domain.PaymentStatus, error)
}

// PaymentScheduler enqueues an order for background verification checks.
type PaymentScheduler interface {
	ScheduleCheck(orderID uuid.UUID)
}
