package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockops-backend/internal/shared/middleware"
	"stockops-backend/internal/shared/response"
	"stockops-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			response.Error(ctx, http.StatusServiceUnavailable, "SYS_DB", "database unreachable")
			return
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			response.Error(ctx, http.StatusServiceUnavailable, "SYS_CACHE", "cache unreachable")
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.Auth(c.JWTManager)

	setupStockRoutes(v1, c, auth)
	setupReservationRoutes(v1, c, auth)
	setupOrderRoutes(v1, c, auth)

	return router
}

func setupStockRoutes(rg *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	stock := rg.Group("/stock")
	stock.Use(auth)
	{
		stock.POST("/movements", c.StockHandler.AppendMovement)
		stock.GET("/movements", c.StockHandler.ListMovements)
		stock.GET("/products/:id/state", c.StockHandler.GetStockState)
		stock.GET("/products/:id/classification", c.StockHandler.Classify)
		stock.GET("/products/:id/movements/stats", c.StockHandler.GetMovementStats)
		stock.GET("/alerts", c.StockHandler.ListAlerts)
	}
}

func setupReservationRoutes(rg *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	reservations := rg.Group("/reservations")
	reservations.Use(auth)
	{
		reservations.POST("", c.ReservationHandler.Reserve)
		reservations.GET("", c.ReservationHandler.ListActive)
		reservations.POST("/:id/release", c.ReservationHandler.Release)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.Use(auth)
	{
		orders.POST("/purchase", c.OrderHandler.CreatePurchaseOrder)
		orders.GET("/purchase/:id", c.OrderHandler.GetPurchaseOrder)
		orders.POST("/purchase/:id/confirm", c.OrderHandler.ConfirmPurchaseOrder)
		orders.POST("/purchase/:id/lines/:lineId/receive", c.OrderHandler.ReceiveLine)

		orders.POST("/sales", c.OrderHandler.CreateSalesOrder)
		orders.GET("/sales/:id", c.OrderHandler.GetSalesOrder)
		orders.POST("/sales/:id/confirm", c.OrderHandler.ConfirmSalesOrder)
		orders.POST("/sales/:id/lines/:lineId/ship", c.OrderHandler.ShipLine)
		orders.POST("/sales/:id/cancel", c.OrderHandler.CancelSalesOrder)
	}
}
