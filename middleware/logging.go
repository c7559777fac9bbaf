package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-optimizer/metasight/metrics"
)

const slowRequestThreshold = 5 * time.Second

// RequestLogger logs every completed request with its status and timing
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id":  GetRequestID(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"remote_ip":   c.ClientIP(),
			"duration_ms": duration.Milliseconds(),
		})

		switch {
		case status >= 500:
			entry.Error("Request failed with server error")
		case duration > slowRequestThreshold:
			entry.Warn("Slow request detected")
		default:
			entry.Info("Request completed")
		}
	}
}

// Metrics records request counts and latencies by route
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
