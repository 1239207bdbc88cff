package http

import (
	"github.com/gin-gonic/gin"
	"github.com/soktep/khqrpay/internal/core/port"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Handler
	service port.Service
}

func NewAdminHandler(service port.Service, logger *zap.Logger) (*AdminHandler, error) {
	return &AdminHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

// ListPendingOrders returns every order still awaiting payment or being
// verified, for the shop operator's approval workflow.
func (ah *AdminHandler) ListPendingOrders(ctx *gin.Context) {
	list, err := ah.service.ListPendingOrders(ctx)
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	result := make([]orderResp, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResp(o))
	}

	ah.handleSuccess(ctx, result)
}

// GetOrderByKey resolves a verification key from a bank notification back to
// the order it belongs to.
func (ah *AdminHandler) GetOrderByKey(ctx *gin.Context) {
	order, err := ah.service.GetOrderByVerificationKey(ctx, ctx.Param("key"))
	if err != nil {
		ah.handleError(ctx, err)
		return
	}

	ah.handleSuccess(ctx, newOrderResp(order))
}
