package bakong

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/soktep/khqrpay/internal/adapter/config"
	"github.com/soktep/khqrpay/internal/core/domain"
	"go.uber.org/zap"
)

const checkPath = "/v1/check_transaction_by_md5"

// Client asks the Bakong-style verification service whether the payment
// behind a verification key has settled. It carries no retry logic; the
// scheduler owns retries.
type Client struct {
	logger     *zap.Logger
	host       string
	token      string
	httpClient *http.Client
}

func NewClient(cfg *config.Bakong, log *zap.Logger) (*Client, error) {
	return &Client{
		logger: log,
		host:   cfg.HostString,
		token:  cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

type checkRequest struct {
	MD5 string `json:"md5"`
}

type checkResponse struct {
	ResponseCode    int    `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
	ErrorCode       *int   `json:"errorCode"`
}

// Service-side error codes observed from the check endpoint.
const (
	errCodeNotFound = 1
	errCodeExpired  = 3
)

// CheckStatus maps the service's response shapes onto the status enum.
// Anything the mapping does not recognize, a non-2xx reply and any transport
// failure all come back as ErrVerificationUnavailable so the caller never
// mistakes an outage for "not paid yet".
func (c *Client) CheckStatus(ctx context.Context, key string) (domain.PaymentStatus, error) {
	body, err := json.Marshal(checkRequest{MD5: key})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrVerificationUnavailable, err)
	}

	base := c.host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	requestStr := base + checkPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestStr, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("fire verification request", zap.String("key", key))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected status from verification service",
			zap.String("key", key), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: http status %d", domain.ErrVerificationUnavailable, resp.StatusCode)
	}

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrVerificationUnavailable, err)
	}

	if result.ResponseCode == 0 {
		return domain.PaymentStatusPaid, nil
	}
	if result.ErrorCode != nil {
		switch *result.ErrorCode {
		case errCodeNotFound:
			return domain.PaymentStatusUnpaid, nil
		case errCodeExpired:
			return domain.PaymentStatusExpired, nil
		}
	}

	c.logger.Warn("unrecognized verification response",
		zap.String("key", key),
		zap.Int("responseCode", result.ResponseCode),
		zap.String("responseMessage", result.ResponseMessage))
	return "", fmt.Errorf("%w: response code %d", domain.ErrVerificationUnavailable, result.ResponseCode)
}
