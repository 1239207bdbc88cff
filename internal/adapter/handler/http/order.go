package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soktep/khqrpay/internal/core/domain"
	"github.com/soktep/khqrpay/internal/core/port"
	"go.uber.org/zap"
)

const qrImageSize = 256

type OrderHandler struct {
	Handler
	service  port.Service
	renderer port.QRRenderer
	// Display-only conversion rate for USD orders; zero disables it.
	usdKHRRate decimal.Decimal
}

func NewOrderHandler(service port.Service, renderer port.QRRenderer,
	usdKHRRate decimal.Decimal, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler:    *NewHandler(logger),
		service:    service,
		renderer:   renderer,
		usdKHRRate: usdKHRRate,
	}, nil
}

type orderLineReq struct {
	Title     string `json:"title" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type createOrderReq struct {
	Currency string         `json:"currency" binding:"required"`
	Lines    []orderLineReq `json:"lines" binding:"required"`
}

type orderResp struct {
	ID            string           `json:"id"`
	Amount        decimal.Decimal  `json:"amount"`
	AmountKHR     *decimal.Decimal `json:"amount_khr,omitempty"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status"`
	BillReference string           `json:"bill_reference"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

func newOrderResp(o *domain.Order) orderResp {
	r := orderResp{
		ID:            o.ID.String(),
		Amount:        o.Amount,
		Currency:      string(o.Currency),
		Status:        string(o.Status),
		BillReference: o.BillReference,
		CreatedAt:     o.CreatedAt,
	}
	if !o.ExpiresAt.IsZero() {
		t := o.ExpiresAt
		r.ExpiresAt = &t
	}
	return r
}

func (oh *OrderHandler) orderResp(o *domain.Order) orderResp {
	r := newOrderResp(o)
	if o.Currency == domain.CurrencyUSD && oh.usdKHRRate.Cmp(decimal.Zero) > 0 {
		if khr, err := o.Amount.Mul(oh.usdKHRRate); err == nil {
			khr = khr.Rescale(0)
			r.AmountKHR = &khr
		}
	}
	return r
}

// CreateOrder opens a draft order from the submitted lines.
func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	var req createOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		price, err := decimal.Parse(l.UnitPrice)
		if err != nil {
			oh.handleValidationError(ctx, domain.ErrBadRequest)
			return
		}
		lines = append(lines, domain.OrderLine{
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}

	order, err := oh.service.CreateOrder(ctx, lines, domain.Currency(req.Currency))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, oh.orderResp(order), http.StatusCreated)
}

type qrResp struct {
	orderResp
	Payload string `json:"payload"`
	QRImage []byte `json:"qr_image"`
}

// IssueQR finalizes the payload for a draft order and returns it with a
// rendered PNG. A repeated call is rejected; a stale QR means a new order.
func (oh *OrderHandler) IssueQR(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.IssueQR(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	png, err := oh.renderer.RenderPNG(order.Payload, qrImageSize)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, qrResp{
		orderResp: oh.orderResp(order),
		Payload:   order.Payload,
		QRImage:   png,
	})
}

// GetOrder returns the stored order state.
func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.GetOrder(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, oh.orderResp(order))
}

// CheckOrder runs a user-driven verification pass. It goes through the same
// serialized path as the background scheduler, so concurrent checks cannot
// produce divergent transitions.
func (oh *OrderHandler) CheckOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.service.CheckOrder(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, oh.orderResp(order))
}

// CancelOrder cancels a non-terminal order.
func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	if err := oh.service.Cancel(ctx, orderID); err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, nil, http.StatusNoContent)
}
