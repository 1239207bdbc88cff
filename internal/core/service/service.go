package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soktep/khqrpay/internal/core/domain"
	"github.com/soktep/khqrpay/internal/core/khqr"
	"github.com/soktep/khqrpay/internal/core/port"
	"go.uber.org/zap"
)

// allowed edges of the order lifecycle. Terminal states have no entry here,
// so any transition out of them fails.
var allowed = map[domain.OrderStatus]map[domain.OrderStatus]bool{
	domain.OrderStatusDraft: {
		domain.OrderStatusAwaitingPayment: true,
		domain.OrderStatusCancelled:       true,
		domain.OrderStatusError:           true,
	},
	domain.OrderStatusAwaitingPayment: {
		domain.OrderStatusVerifying: true,
		domain.OrderStatusExpired:   true,
		domain.OrderStatusCancelled: true,
		domain.OrderStatusError:     true,
	},
	domain.OrderStatusVerifying: {
		domain.OrderStatusPaid:      true,
		domain.OrderStatusExpired:   true,
		domain.OrderStatusCancelled: true,
		domain.OrderStatusError:     true,
	},
}

type Service struct {
	repo      port.Repository
	verifier  port.PaymentVerifier
	scheduler port.PaymentScheduler
	merchant  *domain.Merchant
	window    time.Duration
	logger    *zap.Logger
	locks     orderLocks
}

func NewService(repo port.Repository, verifier port.PaymentVerifier,
	scheduler port.PaymentScheduler, merchant *domain.Merchant,
	window time.Duration, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:      repo,
		verifier:  verifier,
		scheduler: scheduler,
		merchant:  merchant,
		window:    window,
		logger:    logger,
		locks:     newOrderLocks(),
	}, nil
}

func (s *Service) CreateOrder(ctx context.Context, lines []domain.OrderLine,
	currency domain.Currency) (*domain.Order, error) {
	if !currency.Valid() {
		return nil, domain.ErrUnsupportedCurrency
	}
	if len(lines) == 0 {
		return nil, domain.ErrBadRequest
	}

	amount := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrBadRequest
		}
		qty, err := decimal.New(int64(line.Quantity), 0)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		lineTotal, err := line.UnitPrice.Mul(qty)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		amount, err = amount.Add(lineTotal)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	id := uuid.New()
	now := time.Now()

	order := &domain.Order{
		ID:              id,
		Lines:           lines,
		Amount:          amount,
		Currency:        currency,
		MerchantAccount: s.merchant.AccountID,
		BillReference:   fmt.Sprintf("%d-%.8s", now.Unix(), id.String()),
		Status:          domain.OrderStatusDraft,
		CreatedAt:       now,
	}

	newOrder, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		s.logger.Error("create order", zap.Error(err))
		return nil, err
	}

	return newOrder, nil
}

// IssueQR computes the payload and verification key exactly once for an
// order and opens the payment window. A second call fails: a fresh QR
// means a fresh order.
func (s *Service) IssueQR(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	unlock := s.locks.lock(orderID)
	defer unlock()

	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Payload != "" {
		return nil, domain.ErrPayloadAlreadyIssued
	}
	if order.Status != domain.OrderStatusDraft {
		s.logger.Warn("issue QR on non-draft order",
			zap.String("order", orderID.String()),
			zap.String("status", string(order.Status)))
		return nil, domain.ErrInvalidTransition
	}

	payload, err := khqr.Encode(order, s.merchant)
	if err != nil {
		// Encoding faults are unrecoverable for this order.
		if _, ferr := s.transition(ctx, order, domain.OrderStatusError); ferr != nil {
			s.logger.Error("mark order failed", zap.Error(ferr))
		}
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	order.Payload = payload
	order.VerificationKey = khqr.DeriveKey(payload)
	order.ExpiresAt = time.Now().Add(s.window)

	order, err = s.transition(ctx, order, domain.OrderStatusAwaitingPayment)
	if err != nil {
		return nil, err
	}

	s.scheduler.ScheduleCheck(order.ID)

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.repo.ReadOrder(ctx, orderID)
}

// GetOrderByVerificationKey maps a bank-side correlation key back to its
// order.
func (s *Service) GetOrderByVerificationKey(ctx context.Context, key string) (*domain.Order, error) {
	return s.repo.ReadOrderByVerificationKey(ctx, key)
}

func (s *Service) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.ListPendingOrders(ctx)
}

// Cancel moves a non-terminal order to Cancelled. A verification check in
// flight for the order will find it terminal and discard its result.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) error {
	unlock := s.locks.lock(orderID)
	defer unlock()

	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	_, err = s.transition(ctx, order, domain.OrderStatusCancelled)
	return err
}

// CheckOrder runs one verification pass for the order. Expiry is decided
// first, from the wall clock alone; only then is the verification service
// consulted, with no lock held across the call. A transient service error
// leaves the order untouched for the next tick.
func (s *Service) CheckOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	unlock := s.locks.lock(orderID)

	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		unlock()
		return nil, err
	}
	if order.Status.Terminal() || order.Status == domain.OrderStatusDraft {
		unlock()
		return order, nil
	}

	if !time.Now().Before(order.ExpiresAt) {
		order, err = s.transition(ctx, order, domain.OrderStatusExpired)
		unlock()
		return order, err
	}

	if order.Status == domain.OrderStatusAwaitingPayment {
		order, err = s.transition(ctx, order, domain.OrderStatusVerifying)
		if err != nil {
			unlock()
			return nil, err
		}
	}
	key := order.VerificationKey
	unlock()

	status, err := s.verifier.CheckStatus(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationUnavailable) {
			// Absorbed: the order stays pending and the next tick retries,
			// bounded by the same expiry deadline.
			s.logger.Warn("verification unavailable",
				zap.String("order", orderID.String()), zap.Error(err))
			return order, nil
		}
		return nil, err
	}

	return s.applyStatus(ctx, orderID, status)
}

// applyStatus applies a verification result under the order lock, re-reading
// the order so a result that raced with cancel or expiry is discarded.
func (s *Service) applyStatus(ctx context.Context, orderID uuid.UUID,
	status domain.PaymentStatus) (*domain.Order, error) {
	unlock := s.locks.lock(orderID)
	defer unlock()

	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		s.logger.Debug("discarding late verification result",
			zap.String("order", orderID.String()),
			zap.String("status", string(status)))
		return order, nil
	}

	switch status {
	case domain.PaymentStatusPaid:
		return s.transition(ctx, order, domain.OrderStatusPaid)
	case domain.PaymentStatusExpired:
		return s.transition(ctx, order, domain.OrderStatusExpired)
	case domain.PaymentStatusUnpaid:
		if !time.Now().Before(order.ExpiresAt) {
			return s.transition(ctx, order, domain.OrderStatusExpired)
		}
		// Loop edge: stays in Verifying until paid or expired.
		return order, nil
	}
	return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInternal, status)
}

// transition is the sole mutator of an order's status. A same-state
// transition is a no-op, so a duplicate Paid signal is absorbed; leaving a
// terminal state fails.
func (s *Service) transition(ctx context.Context, order *domain.Order,
	to domain.OrderStatus) (*domain.Order, error) {
	if order.Status == to {
		return order, nil
	}
	if !allowed[order.Status][to] {
		s.logger.Warn("invalid transition",
			zap.String("order", order.ID.String()),
			zap.String("from", string(order.Status)),
			zap.String("to", string(to)))
		return nil, domain.ErrInvalidTransition
	}

	order.Status = to
	updated, err := s.repo.UpdateOrder(ctx, order)
	if err != nil {
		s.logger.Error("update order", zap.Error(err))
		return nil, err
	}
	return updated, nil
}
