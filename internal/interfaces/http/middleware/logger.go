package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"payment-broker.backend/pkg/logger"
)

// LoggerMiddleware logs each request once it has been served. The query
// string is left out: it may carry secret ids.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.LogRequest(c.Request.Context(), logger.RequestEntry{
			Method:   c.Request.Method,
			Path:     path,
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
			Bytes:    max(c.Writer.Size(), 0),
		})
	}
}
