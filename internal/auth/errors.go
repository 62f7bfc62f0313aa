package auth

import (
	"fmt"
	"net/http"
)

// AuthError reports that no usable credential could be resolved for the
// caller. The caller must authenticate again.
type AuthError struct {
	Reason string
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the failure, 401 by default.
func (e *AuthError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusUnauthorized
	}
	return e.Status
}

// ConfigError reports that no authentication method is configured, or that
// the configured one is unusable. It is a deployment problem, not a caller one.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication misconfigured: %s: %v", e.Reason, e.Err)
	}
	return "authentication misconfigured: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StatusCode returns 500.
func (e *ConfigError) StatusCode() int { return http.StatusInternalServerError }
