package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrUnauthorized               = errors.New("caller is unauthorized to access the resource")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")

	// * Encoding errors (fatal to the order, never retried).
	ErrInvalidField           = errors.New("field value cannot be represented in payload")
	ErrFieldTooLong           = errors.New("field value exceeds 99 bytes")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrUnsupportedCurrency    = errors.New("currency is not supported by the payload format")
	ErrMerchantAccountMissing = errors.New("merchant account is not configured")

	// * Lifecycle errors.
	ErrPayloadAlreadyIssued = errors.New("payload already issued for order")
	ErrInvalidTransition    = errors.New("invalid order status transition")

	// * Verification errors (transient, retried until expiry).
	ErrVerificationUnavailable = errors.New("verification service unavailable")
)
