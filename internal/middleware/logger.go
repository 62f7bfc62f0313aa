package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"go.uber.org/zap"
)

// Counters tracks request totals for the metrics endpoint.
type Counters struct {
	Requests atomic.Int64
	Errors   atomic.Int64
}

// RequestLogger logs each completed request and, when counters is non-nil,
// counts it. Responses with status >= 500 count as errors.
func RequestLogger(logger *zap.Logger, counters *Counters) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if counters != nil {
			counters.Requests.Add(1)
			if status >= 500 {
				counters.Errors.Add(1)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status_code", status),
			zap.Duration("duration", time.Since(start)),
			zap.String(logging.FieldClientIP, c.ClientIP()),
		}
		log := logging.WithContext(c.Request.Context(), logger)
		switch {
		case status >= 500:
			log.Error("request completed", fields...)
		case status >= 400:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
