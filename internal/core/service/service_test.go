package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soktep/khqrpay/internal/core/domain"
	"github.com/soktep/khqrpay/internal/core/khqr"
	"github.com/soktep/khqrpay/internal/core/port"
	"github.com/soktep/khqrpay/internal/core/port/mock"
	"github.com/soktep/khqrpay/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const window = 10 * time.Minute

func merchant() *domain.Merchant {
	return &domain.Merchant{
		AccountID:    "shop@bank",
		ProviderID:   "khqr@bakong",
		Name:         "Pu-Tephh Mnus Sahav",
		City:         "Phnom Penh",
		CategoryCode: "5999",
		CountryCode:  "KH",
	}
}

func newService(t *testing.T, repo port.Repository, verifier port.PaymentVerifier,
	scheduler port.PaymentScheduler) *service.Service {
	t.Helper()
	logger, _ := zap.NewProduction()
	s, err := service.NewService(repo, verifier, scheduler, merchant(), window, logger)
	require.NoError(t, err)
	return s
}

type prepareMocks func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
	scheduler *mock.MockPaymentScheduler)

func TestService_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	lines := []domain.OrderLine{
		{Title: "Physics Grade 12", Quantity: 2, UnitPrice: decimal.MustParse("1.50")},
		{Title: "Khmer Literature", Quantity: 1, UnitPrice: decimal.MustParse("2.25")},
	}

	tests := []struct {
		name     string
		lines    []domain.OrderLine
		currency domain.Currency
		mock     prepareMocks
		expError error
	}{
		{
			name:     "good order sums lines",
			lines:    lines,
			currency: domain.CurrencyUSD,
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						assert.Equal(t, domain.OrderStatusDraft, o.Status)
						assert.Equal(t, "shop@bank", o.MerchantAccount)
						assert.NotEmpty(t, o.BillReference)
						assert.Equal(t, decimal.MustParse("5.25"), o.Amount)
						return o, nil
					})
			},
		},
		{
			name:     "no lines",
			lines:    nil,
			currency: domain.CurrencyUSD,
			mock:     func(*mock.MockRepository, *mock.MockPaymentVerifier, *mock.MockPaymentScheduler) {},
			expError: domain.ErrBadRequest,
		},
		{
			name:     "unsupported currency",
			lines:    lines,
			currency: domain.Currency("EUR"),
			mock:     func(*mock.MockRepository, *mock.MockPaymentVerifier, *mock.MockPaymentScheduler) {},
			expError: domain.ErrUnsupportedCurrency,
		},
		{
			name:     "zero amount",
			lines:    []domain.OrderLine{{Title: "Freebie", Quantity: 1, UnitPrice: decimal.Zero}},
			currency: domain.CurrencyUSD,
			mock:     func(*mock.MockRepository, *mock.MockPaymentVerifier, *mock.MockPaymentScheduler) {},
			expError: domain.ErrInvalidAmount,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			verifier := mock.NewMockPaymentVerifier(mockCtrl)
			scheduler := mock.NewMockPaymentScheduler(mockCtrl)
			test.mock(repo, verifier, scheduler)

			s := newService(t, repo, verifier, scheduler)

			order, err := s.CreateOrder(context.Background(), test.lines, test.currency)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, order)
				return
			}
			assert.NoError(t, err)
			require.NotNil(t, order)
			assert.Empty(t, order.Payload, "payload must not exist before IssueQR")
		})
	}
}

func TestService_IssueQR(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()

	draft := func() *domain.Order {
		return &domain.Order{
			ID:              orderID,
			Amount:          decimal.MustParse("0.01"),
			Currency:        domain.CurrencyUSD,
			MerchantAccount: "shop@bank",
			BillReference:   "BILL1",
			Status:          domain.OrderStatusDraft,
			CreatedAt:       time.Now(),
		}
	}

	t.Run("issues payload once", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		verifier := mock.NewMockPaymentVerifier(mockCtrl)
		scheduler := mock.NewMockPaymentScheduler(mockCtrl)

		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(draft(), nil)
		repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
				return o, nil
			})
		scheduler.EXPECT().ScheduleCheck(orderID)

		s := newService(t, repo, verifier, scheduler)

		order, err := s.IssueQR(context.Background(), orderID)
		require.NoError(t, err)

		assert.Equal(t, domain.OrderStatusAwaitingPayment, order.Status)
		assert.True(t, khqr.Verify(order.Payload))
		assert.Equal(t, khqr.DeriveKey(order.Payload), order.VerificationKey)
		assert.WithinDuration(t, time.Now().Add(window), order.ExpiresAt, time.Minute)
	})

	t.Run("second issue is rejected", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		verifier := mock.NewMockPaymentVerifier(mockCtrl)
		scheduler := mock.NewMockPaymentScheduler(mockCtrl)

		issued := draft()
		issued.Status = domain.OrderStatusAwaitingPayment
		issued.Payload = "000201...6304ABCD"
		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(issued, nil)

		s := newService(t, repo, verifier, scheduler)

		_, err := s.IssueQR(context.Background(), orderID)
		assert.ErrorIs(t, err, domain.ErrPayloadAlreadyIssued)
	})

	t.Run("encoding fault marks the order failed", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		verifier := mock.NewMockPaymentVerifier(mockCtrl)
		scheduler := mock.NewMockPaymentScheduler(mockCtrl)

		broken := draft()
		broken.MerchantAccount = ""
		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(broken, nil)
		repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
				assert.Equal(t, domain.OrderStatusError, o.Status)
				return o, nil
			})

		s := newService(t, repo, verifier, scheduler)

		_, err := s.IssueQR(context.Background(), orderID)
		assert.ErrorIs(t, err, domain.ErrMerchantAccountMissing)
	})
}

func TestService_CheckOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()

	pending := func(status domain.OrderStatus, expiresIn time.Duration) *domain.Order {
		return &domain.Order{
			ID:              orderID,
			Amount:          decimal.MustParse("0.01"),
			Currency:        domain.CurrencyUSD,
			MerchantAccount: "shop@bank",
			VerificationKey: "0123456789abcdef0123456789abcdef",
			Status:          status,
			CreatedAt:       time.Now(),
			ExpiresAt:       time.Now().Add(expiresIn),
		}
	}

	tests := []struct {
		name      string
		mock      prepareMocks
		expStatus domain.OrderStatus
		expError  error
	}{
		{
			name: "first check begins polling",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				order := pending(domain.OrderStatusAwaitingPayment, window)
				gomock.InOrder(
					repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil),
					repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
							return o, nil
						}),
					verifier.EXPECT().CheckStatus(gomock.Any(), order.VerificationKey).
						Return(domain.PaymentStatusUnpaid, nil),
					repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil),
				)
			},
			expStatus: domain.OrderStatusVerifying,
		},
		{
			name: "paid while verifying",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				order := pending(domain.OrderStatusVerifying, window)
				repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil).Times(2)
				verifier.EXPECT().CheckStatus(gomock.Any(), order.VerificationKey).
					Return(domain.PaymentStatusPaid, nil)
				repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
			},
			expStatus: domain.OrderStatusPaid,
		},
		{
			name: "unpaid stays verifying without update",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				order := pending(domain.OrderStatusVerifying, window)
				repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil).Times(2)
				verifier.EXPECT().CheckStatus(gomock.Any(), order.VerificationKey).
					Return(domain.PaymentStatusUnpaid, nil)
			},
			expStatus: domain.OrderStatusVerifying,
		},
		{
			name: "deadline reached expires without calling the verifier",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				order := pending(domain.OrderStatusVerifying, -time.Second)
				repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil)
				repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
			},
			expStatus: domain.OrderStatusExpired,
		},
		{
			name: "service error leaves the order untouched",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				order := pending(domain.OrderStatusVerifying, window)
				repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil)
				verifier.EXPECT().CheckStatus(gomock.Any(), order.VerificationKey).
					Return(domain.PaymentStatus(""), domain.ErrVerificationUnavailable)
			},
			expStatus: domain.OrderStatusVerifying,
		},
		{
			name: "terminal order is a no-op",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				order := pending(domain.OrderStatusPaid, window)
				repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil)
			},
			expStatus: domain.OrderStatusPaid,
		},
		{
			name: "paid result arriving after expiry is discarded",
			mock: func(repo *mock.MockRepository, verifier *mock.MockPaymentVerifier,
				scheduler *mock.MockPaymentScheduler) {
				active := pending(domain.OrderStatusVerifying, window)
				expired := pending(domain.OrderStatusExpired, -time.Second)
				gomock.InOrder(
					repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(active, nil),
					verifier.EXPECT().CheckStatus(gomock.Any(), active.VerificationKey).
						Return(domain.PaymentStatusPaid, nil),
					// Expired while the check was in flight.
					repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(expired, nil),
				)
			},
			expStatus: domain.OrderStatusExpired,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			verifier := mock.NewMockPaymentVerifier(mockCtrl)
			scheduler := mock.NewMockPaymentScheduler(mockCtrl)
			test.mock(repo, verifier, scheduler)

			s := newService(t, repo, verifier, scheduler)

			order, err := s.CheckOrder(context.Background(), orderID)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, order)
			assert.Equal(t, test.expStatus, order.Status)
		})
	}
}

func TestService_Cancel(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()

	t.Run("cancels a pending order", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		verifier := mock.NewMockPaymentVerifier(mockCtrl)
		scheduler := mock.NewMockPaymentScheduler(mockCtrl)

		order := &domain.Order{ID: orderID, Status: domain.OrderStatusAwaitingPayment}
		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil)
		repo.EXPECT().UpdateOrder(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
				assert.Equal(t, domain.OrderStatusCancelled, o.Status)
				return o, nil
			})

		s := newService(t, repo, verifier, scheduler)
		assert.NoError(t, s.Cancel(context.Background(), orderID))
	})

	t.Run("cancel of a terminal order fails", func(t *testing.T) {
		repo := mock.NewMockRepository(mockCtrl)
		verifier := mock.NewMockPaymentVerifier(mockCtrl)
		scheduler := mock.NewMockPaymentScheduler(mockCtrl)

		order := &domain.Order{ID: orderID, Status: domain.OrderStatusExpired}
		repo.EXPECT().ReadOrder(gomock.Any(), orderID).Return(order, nil)

		s := newService(t, repo, verifier, scheduler)
		assert.ErrorIs(t, s.Cancel(context.Background(), orderID), domain.ErrInvalidTransition)
	})
}

// stubRepo is a minimal in-memory repository for concurrency tests, where
// gomock's fixed return values cannot model state shared between goroutines.
type stubRepo struct {
	mu        sync.Mutex
	order     domain.Order
	paidCount int
}

func (r *stubRepo) CreateOrder(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = *o
	cp := r.order
	return &cp, nil
}

func (r *stubRepo) UpdateOrder(_ context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.Status == domain.OrderStatusPaid {
		r.paidCount++
	}
	r.order = *o
	cp := r.order
	return &cp, nil
}

func (r *stubRepo) ReadOrder(_ context.Context, _ uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.order
	return &cp, nil
}

func (r *stubRepo) ReadOrderByVerificationKey(_ context.Context, _ string) (*domain.Order, error) {
	return r.ReadOrder(context.Background(), uuid.Nil)
}

func (r *stubRepo) ListPendingOrders(_ context.Context) ([]*domain.Order, error) {
	o, _ := r.ReadOrder(context.Background(), uuid.Nil)
	return []*domain.Order{o}, nil
}

func TestService_ConcurrentChecksSingleTerminalTransition(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	orderID := uuid.New()
	repo := &stubRepo{order: domain.Order{
		ID:              orderID,
		Status:          domain.OrderStatusVerifying,
		VerificationKey: "0123456789abcdef0123456789abcdef",
		ExpiresAt:       time.Now().Add(window),
	}}

	verifier := mock.NewMockPaymentVerifier(mockCtrl)
	verifier.EXPECT().CheckStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (domain.PaymentStatus, error) {
			time.Sleep(10 * time.Millisecond)
			return domain.PaymentStatusPaid, nil
		}).AnyTimes()

	s := newService(t, repo, verifier, mock.NewMockPaymentScheduler(mockCtrl))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CheckOrder(context.Background(), orderID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, domain.OrderStatusPaid, repo.order.Status)
	assert.Equal(t, 1, repo.paidCount, "only one Paid transition may be applied")
}
