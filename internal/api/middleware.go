package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellsgz/udprtt/internal/logging"
)

// CORS lets browser dashboards on other origins read the status surface.
// Every route is a GET, so only simple requests and preflights are handled.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", http.MethodGet)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger returns a middleware that logs HTTP requests at debug level
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logging.Debug("API", "request",
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
		)
	}
}

// Recovery turns a handler panic into a JSON 500 and logs it
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Warn("API", "handler panic", "path", c.Request.URL.Path, "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}
