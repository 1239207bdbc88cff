package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soktep/khqrpay/internal/core/domain"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrBadRequest: http.StatusBadRequest,

	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,

	domain.ErrInvalidField:           http.StatusUnprocessableEntity,
	domain.ErrFieldTooLong:           http.StatusUnprocessableEntity,
	domain.ErrInvalidAmount:          http.StatusUnprocessableEntity,
	domain.ErrUnsupportedCurrency:    http.StatusUnprocessableEntity,
	domain.ErrMerchantAccountMissing: http.StatusUnprocessableEntity,

	domain.ErrPayloadAlreadyIssued: http.StatusConflict,
	domain.ErrInvalidTransition:    http.StatusConflict,
}

func statusFor(err error) int {
	for sentinel, code := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return http.StatusInternalServerError
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends an error response for some specific request validation error
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode := statusFor(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.Error("error processing request", zap.Error(err))
	}
	ctx.JSON(statusCode, gin.H{"error": err.Error()})
}

// handleSuccess sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}

// handleAbort ends the request from middleware with the mapped status code.
func handleAbort(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
