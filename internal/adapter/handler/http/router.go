package http

import (
	"github.com/gin-gonic/gin"
	"github.com/soktep/khqrpay/internal/adapter/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	orderHandler *OrderHandler,
	adminHandler *AdminHandler) (*Router, error) {

	router := gin.New()

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/qr", orderHandler.IssueQR)
			orders.POST("/:id/check", orderHandler.CheckOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		admin := api.Group("/admin")
		{
			admin.Use(adminCheck(conf.AdminToken))
			admin.GET("/orders/pending", adminHandler.ListPendingOrders)
			admin.GET("/orders/by-key/:key", adminHandler.GetOrderByKey)
			admin.POST("/orders/:id/cancel", orderHandler.CancelOrder)
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
