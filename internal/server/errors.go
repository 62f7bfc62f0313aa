package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sofatutor/copilot-metrics-gateway/internal/apptoken"
	"github.com/sofatutor/copilot-metrics-gateway/internal/auth"
	"github.com/sofatutor/copilot-metrics-gateway/internal/authz"
	"github.com/sofatutor/copilot-metrics-gateway/internal/copilot"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"github.com/sofatutor/copilot-metrics-gateway/internal/service"
	"go.uber.org/zap"
)

type statusCoder interface {
	StatusCode() int
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		authErr *auth.AuthError
		cfgErr  *auth.ConfigError
		sc      statusCoder
	)
	switch {
	case errors.Is(err, copilot.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return authErr.StatusCode()
	case errors.Is(err, authz.ErrDenied):
		return http.StatusForbidden
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.As(err, &sc):
		if code := sc.StatusCode(); code >= 400 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// retryAfter renders the token cooldown as whole seconds, rounding up.
func retryAfter(cooldown time.Duration) string {
	if cooldown <= 0 {
		cooldown = apptoken.DefaultCooldown
	}
	secs := int64((cooldown + time.Second - 1) / time.Second)
	return strconv.FormatInt(secs, 10)
}

// writeError converts err into a plain-text error response and records
// authentication outcomes in the audit log.
func (s *Server) writeError(c *gin.Context, err error, session *auth.Session) {
	status := statusFor(err)
	ctx := c.Request.Context()
	log := logging.WithContext(ctx, s.logger)
	path := c.Request.URL.Path

	switch {
	case status == http.StatusUnauthorized:
		s.deps.Audit.LogAuthFailure(ctx, path, err.Error(), c.ClientIP(), c.Request.UserAgent())
	case status == http.StatusForbidden:
		actor := ""
		if session != nil {
			actor, _ = session.Identity.Username()
		}
		s.deps.Audit.LogAccessDenied(ctx, actor, path, c.ClientIP(), c.Request.UserAgent())
	case status == http.StatusServiceUnavailable && errors.Is(err, apptoken.ErrCoolingDown):
		c.Header("Retry-After", retryAfter(s.config.GitHubApp.TokenCooldown))
	}

	if status >= 500 {
		log.Error("Request failed", zap.String("path", path), zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("path", path), zap.Int("status", status), zap.Error(err))
	}
	c.String(status, err.Error())
	c.Abort()
}
