package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soktep/khqrpay/internal/adapter/config"
	"github.com/soktep/khqrpay/internal/core/port"
	"go.uber.org/zap"
)

// Scheduler drives background verification of pending orders: a ticker
// re-enqueues every order in AwaitingPayment or Verifying, and a worker pool
// runs the checks. Expiry is enforced inside the service's CheckOrder, so a
// failed or skipped check never extends the payment window.
type Scheduler struct {
	logger   *zap.Logger
	interval time.Duration
	queue    chan uuid.UUID

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

func NewScheduler(cfg *config.Payment, log *zap.Logger) *Scheduler {
	return &Scheduler{
		logger:   log,
		interval: cfg.PollInterval,
		queue:    make(chan uuid.UUID, 64),
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// ScheduleCheck enqueues an order without blocking the caller. Dropping on a
// full queue is safe: the next tick lists pending orders again.
func (s *Scheduler) ScheduleCheck(orderID uuid.UUID) {
	select {
	case s.queue <- orderID:
	default:
		s.logger.Debug("check queue full, order picked up on next tick",
			zap.String("order", orderID.String()))
	}
}

// Run starts the worker pool and the tick loop. It returns immediately;
// everything stops when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, checker port.OrderChecker, workers int) {
	for i := 0; i < workers; i++ {
		go s.worker(ctx, checker)
	}
	go s.tickLoop(ctx, checker)
}

// Resume re-enqueues every pending order, so polling continues across
// restarts.
func (s *Scheduler) Resume(ctx context.Context, checker port.OrderChecker) error {
	orders, err := checker.ListPendingOrders(ctx)
	if err != nil {
		return err
	}
	for _, order := range orders {
		s.ScheduleCheck(order.ID)
	}
	s.logger.Info("resumed pending orders", zap.Int("count", len(orders)))
	return nil
}

func (s *Scheduler) tickLoop(ctx context.Context, checker port.OrderChecker) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			orders, err := checker.ListPendingOrders(ctx)
			if err != nil {
				s.logger.Error("list pending orders", zap.Error(err))
				continue
			}
			for _, order := range orders {
				s.ScheduleCheck(order.ID)
			}
		case <-ctx.Done():
			s.logger.Debug("finished tick loop")
			return
		}
	}
}

func (s *Scheduler) worker(ctx context.Context, checker port.OrderChecker) {
	for {
		select {
		case orderID := <-s.queue:
			s.check(ctx, checker, orderID)
		case <-ctx.Done():
			s.logger.Debug("finished worker")
			return
		}
	}
}

// check runs one verification pass, single-flight per order: overlapping
// ticks for the same order are dropped while a check is in progress.
func (s *Scheduler) check(ctx context.Context, checker port.OrderChecker, orderID uuid.UUID) {
	if !s.begin(orderID) {
		s.logger.Debug("check already in flight", zap.String("order", orderID.String()))
		return
	}
	defer s.end(orderID)

	if _, err := checker.CheckOrder(ctx, orderID); err != nil {
		// Transient verification outages are absorbed by the service;
		// anything surfacing here is a data or transition fault.
		s.logger.Error("order check failed",
			zap.String("order", orderID.String()), zap.Error(err))
	}
}

func (s *Scheduler) begin(orderID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[orderID]; busy {
		return false
	}
	s.inflight[orderID] = struct{}{}
	return true
}

func (s *Scheduler) end(orderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, orderID)
}
