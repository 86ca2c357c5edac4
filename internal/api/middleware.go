package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/metrics"
)

func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var allowedOrigin string
		currOrigin := c.Request.Header.Get("Origin")
		for _, origin := range allowed {
			if currOrigin == origin || origin == "*" {
				allowedOrigin = origin
				break
			}
		}
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger audits every request and counts it by route template
func requestLogger(audit *logger.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		audit.LogRequest(c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.ClientIP())
		metrics.RecordHTTPRequest(route, strconv.Itoa(status))
	}
}
