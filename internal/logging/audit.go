package logging

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventAuthFailure   AuditEventType = "auth_failure"
	AuditEventAccessDenied  AuditEventType = "access_denied"
	AuditEventTokenExchange AuditEventType = "token_exchange"
	AuditEventLogout        AuditEventType = "logout"
)

// AuditOutcome represents the outcome of an audit event
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
	AuditOutcomeError   AuditOutcome = "error"
)

// AuditEvent represents a security-sensitive event. Credentials never appear
// here, only fingerprints or obfuscated forms.
type AuditEvent struct {
	EventType     AuditEventType `json:"event_type"`
	Actor         string         `json:"actor,omitempty"`
	Target        string         `json:"target,omitempty"`
	Outcome       AuditOutcome   `json:"outcome"`
	Reason        string         `json:"reason,omitempty"`
	RequestID     string         `json:"request_id,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	ClientIP      string         `json:"client_ip,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
}

// AuditLogger provides structured audit logging functionality
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates a new audit logger using the provided base logger
func NewAuditLogger(baseLogger *zap.Logger) *AuditLogger {
	return &AuditLogger{
		logger: baseLogger.With(zap.String("log_type", "audit")),
	}
}

// LogEvent logs an audit event with structured fields
func (a *AuditLogger) LogEvent(ctx context.Context, event AuditEvent) {
	if a == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.CorrelationID == "" {
		event.CorrelationID = GetCorrelationID(ctx)
	}

	fields := []zap.Field{
		zap.String(FieldEventType, string(event.EventType)),
		zap.String(FieldOutcome, string(event.Outcome)),
		zap.Time("timestamp", event.Timestamp),
	}
	optional := []struct{ key, value string }{
		{FieldActor, event.Actor},
		{FieldTarget, event.Target},
		{FieldReason, event.Reason},
		{FieldRequestID, event.RequestID},
		{FieldCorrelationID, event.CorrelationID},
		{FieldClientIP, event.ClientIP},
		{FieldUserAgent, event.UserAgent},
	}
	for _, f := range optional {
		if f.value != "" {
			fields = append(fields, zap.String(f.key, f.value))
		}
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	switch event.Outcome {
	case AuditOutcomeFailure, AuditOutcomeError:
		a.logger.Warn("Audit event", fields...)
	default:
		a.logger.Info("Audit event", fields...)
	}
}

// LogAuthFailure logs a request that could not be authenticated.
func (a *AuditLogger) LogAuthFailure(ctx context.Context, target, reason, clientIP, userAgent string) {
	a.LogEvent(ctx, AuditEvent{
		EventType: AuditEventAuthFailure,
		Target:    target,
		Outcome:   AuditOutcomeFailure,
		Reason:    reason,
		ClientIP:  clientIP,
		UserAgent: userAgent,
	})
}

// LogAccessDenied logs an authenticated user rejected by the allow-list.
func (a *AuditLogger) LogAccessDenied(ctx context.Context, actor, target, clientIP, userAgent string) {
	a.LogEvent(ctx, AuditEvent{
		EventType: AuditEventAccessDenied,
		Actor:     actor,
		Target:    target,
		Outcome:   AuditOutcomeFailure,
		Reason:    "user not in authorized list",
		ClientIP:  clientIP,
		UserAgent: userAgent,
	})
}

// LogTokenExchange logs a GitHub App installation token exchange.
func (a *AuditLogger) LogTokenExchange(ctx context.Context, installationID int64, outcome AuditOutcome, reason string, expiresAt time.Time) {
	details := map[string]any{"installation_id": installationID}
	if !expiresAt.IsZero() {
		details["expires_at"] = expiresAt.UTC().Format(time.RFC3339)
	}
	a.LogEvent(ctx, AuditEvent{
		EventType: AuditEventTokenExchange,
		Actor:     "github-app",
		Outcome:   outcome,
		Reason:    reason,
		Details:   details,
	})
}

// LogLogout logs a session being cleared.
func (a *AuditLogger) LogLogout(ctx context.Context, actor, clientIP string) {
	a.LogEvent(ctx, AuditEvent{
		EventType: AuditEventLogout,
		Actor:     actor,
		Outcome:   AuditOutcomeSuccess,
		ClientIP:  clientIP,
	})
}
