package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes on the given router
func SetupRoutes(router *gin.Engine, handler *Handler, done <-chan struct{}) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handler.GetStatus)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/ws", ServeWebSocket(handler.hub, done))
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (outside versioned API)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
}
