package server

import (
	"safescan/internal/handler"

	"safescan/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPRouter wires the scanner panel routes onto a gin Engine
func NewHTTPRouter(scanner *handler.ScannerHandler) *gin.Engine {
	monitor.Init()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(monitor.PrometheusMiddleware())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/panel", scanner.Panel)
		api.GET("/networks", scanner.Networks)

		wallet := api.Group("/wallet")
		wallet.POST("/connect", scanner.Connect)
		wallet.POST("/disconnect", scanner.Disconnect)

		approvals := api.Group("/approvals")
		approvals.POST("/preview", scanner.PreviewApproval)
		approvals.POST("", scanner.Approve)
	}

	return r
}
