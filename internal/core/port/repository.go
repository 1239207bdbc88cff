package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/soktep/khqrpay/internal/core/domain"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ReadOrderByVerificationKey(ctx context.Context, key string) (*domain.Order, error)
	// ListPendingOrders returns orders in AwaitingPayment or Verifying.
	ListPendingOrders(ctx context.Context) ([]*domain.Order, error)
}
