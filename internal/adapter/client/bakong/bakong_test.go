package bakong_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soktep/khqrpay/internal/adapter/client/bakong"
	"github.com/soktep/khqrpay/internal/adapter/config"
	"github.com/soktep/khqrpay/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newClient(t *testing.T, url string, timeout time.Duration) *bakong.Client {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	c, err := bakong.NewClient(&config.Bakong{
		HostString: url,
		Token:      "test-token",
		Timeout:    timeout,
	}, logger)
	require.NoError(t, err)
	return c
}

func TestClient_CheckStatus(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name      string
		response  map[string]any
		httpCode  int
		expStatus domain.PaymentStatus
		expError  error
	}{
		{
			name:      "paid",
			response:  map[string]any{"responseCode": 0, "responseMessage": "Success"},
			httpCode:  http.StatusOK,
			expStatus: domain.PaymentStatusPaid,
		},
		{
			name:      "not found means unpaid",
			response:  map[string]any{"responseCode": 1, "responseMessage": "Transaction could not be found", "errorCode": intPtr(1)},
			httpCode:  http.StatusOK,
			expStatus: domain.PaymentStatusUnpaid,
		},
		{
			name:      "expired",
			response:  map[string]any{"responseCode": 1, "responseMessage": "Transaction expired", "errorCode": intPtr(3)},
			httpCode:  http.StatusOK,
			expStatus: domain.PaymentStatusExpired,
		},
		{
			name:     "unknown shape is a service error",
			response: map[string]any{"responseCode": 7},
			httpCode: http.StatusOK,
			expError: domain.ErrVerificationUnavailable,
		},
		{
			name:     "server error is not unpaid",
			response: map[string]any{},
			httpCode: http.StatusInternalServerError,
			expError: domain.ErrVerificationUnavailable,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

				var req map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, testKey, req["md5"])

				w.WriteHeader(test.httpCode)
				_ = json.NewEncoder(w).Encode(test.response)
			}))
			defer srv.Close()

			c := newClient(t, srv.URL, 10*time.Second)

			status, err := c.CheckStatus(context.Background(), testKey)
			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expStatus, status)
		})
	}
}

func TestClient_CheckStatusTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"responseCode": 0})
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, 20*time.Millisecond)

	_, err := c.CheckStatus(context.Background(), testKey)
	assert.ErrorIs(t, err, domain.ErrVerificationUnavailable)
}

func TestClient_CheckStatusUnreachable(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", time.Second)

	_, err := c.CheckStatus(context.Background(), testKey)
	assert.ErrorIs(t, err, domain.ErrVerificationUnavailable)
}
