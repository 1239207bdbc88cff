package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/soktep/khqrpay/internal/core/domain"
)

// Service is the chat/UI boundary: the only entry points surrounding
// components may call.
type Service interface {
	CreateOrder(ctx context.Context, lines []domain.OrderLine, currency domain.Currency) (*domain.Order, error)
	IssueQR(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	GetOrderByVerificationKey(ctx context.Context, key string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) error

	OrderChecker
}

// OrderChecker is the slice of the service the scheduler drives.
type OrderChecker interface {
	// CheckOrder runs one serialized verification pass for the order:
	// expiry first, then the verification service.
	CheckOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListPendingOrders(ctx context.Context) ([]*domain.Order, error)
}
