package logging

import (
	"context"

	"go.uber.org/zap"
)

// Canonical field names shared by request and audit logs.
const (
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldOutcome       = "outcome"
	FieldActor         = "actor"
	FieldTarget        = "target"
	FieldReason        = "reason"
	FieldStrategy      = "strategy"
	FieldFingerprint   = "fingerprint"
	FieldClientIP      = "client_ip"
	FieldUserAgent     = "user_agent"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
)

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithCorrelationID stores the correlation ID in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithContext returns logger annotated with the request identifiers in ctx.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String(FieldRequestID, id))
	}
	if id := GetCorrelationID(ctx); id != "" {
		fields = append(fields, zap.String(FieldCorrelationID, id))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
