// Package middleware holds the gin middleware shared by the gateway's
// routes.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
)

// Header names carrying request identifiers.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestID propagates or generates request and correlation IDs, stores them
// in the request context and echoes them in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := getOrGenerateID(c.GetHeader(HeaderRequestID))
		correlationID := getOrGenerateID(c.GetHeader(HeaderCorrelationID))

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithCorrelationID(ctx, correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderCorrelationID, correlationID)
		c.Next()
	}
}

// getOrGenerateID returns the provided ID if non-empty, otherwise a new UUID.
func getOrGenerateID(existingID string) string {
	existingID = strings.TrimSpace(existingID)
	if existingID == "" {
		return uuid.New().String()
	}
	return existingID
}
