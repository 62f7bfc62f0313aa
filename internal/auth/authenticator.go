// Package auth resolves which upstream credential serves a request. The
// strategies are tried in a fixed order: mock, GitHub App, personal token,
// OAuth session.
package auth

import (
	"context"
	"errors"

	"github.com/sofatutor/copilot-metrics-gateway/internal/authz"
	"github.com/sofatutor/copilot-metrics-gateway/internal/cache"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"go.uber.org/zap"
)

// Authenticator runs strategies in order; the first that applies wins.
type Authenticator struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewAuthenticator creates an Authenticator over strategies, in the given
// order.
func NewAuthenticator(logger *zap.Logger, strategies ...Strategy) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{strategies: strategies, logger: logger}
}

// Options describe the configured authentication methods.
type Options struct {
	MockGlobal   bool
	AppTokens    TokenSource
	Token        string
	OAuthEnabled bool
	Policy       authz.Policy
}

// New builds the standard strategy chain from opts.
func New(opts Options, logger *zap.Logger) *Authenticator {
	return NewAuthenticator(logger,
		MockStrategy{Global: opts.MockGlobal},
		AppStrategy{Tokens: opts.AppTokens, LoginEnabled: opts.OAuthEnabled, Policy: opts.Policy},
		TokenStrategy{Token: opts.Token},
		OAuthStrategy{Enabled: opts.OAuthEnabled, Policy: opts.Policy},
	)
}

// Configured reports whether any non-mock strategy can ever apply.
func (a *Authenticator) Configured() bool {
	empty := RequestContext{}
	for _, s := range a.strategies {
		if s.Name() != StrategyMock && s.Applies(empty) {
			return true
		}
	}
	return false
}

// Resolve returns the credential for rc. Credentials are never logged; only
// the strategy, the path and a fingerprint are.
func (a *Authenticator) Resolve(ctx context.Context, rc RequestContext) (Credential, error) {
	log := logging.WithContext(ctx, a.logger)
	for _, s := range a.strategies {
		if !s.Applies(rc) {
			continue
		}
		cred, err := s.Resolve(ctx, rc)
		if err != nil {
			fields := []zap.Field{zap.String(logging.FieldStrategy, s.Name()), zap.String("path", rc.Path), zap.Error(err)}
			var authErr *AuthError
			if errors.As(err, &authErr) || errors.Is(err, authz.ErrDenied) {
				log.Debug("Credential not resolved", fields...)
			} else {
				log.Error("Credential resolution failed", fields...)
			}
			return Credential{}, err
		}
		if cred.Value == "" {
			log.Debug("Strategy resolved an empty credential", zap.String(logging.FieldStrategy, s.Name()), zap.String("path", rc.Path))
			return Credential{}, &AuthError{Reason: "empty credential"}
		}
		log.Debug("Credential resolved",
			zap.String(logging.FieldStrategy, s.Name()),
			zap.String("path", rc.Path),
			zap.String(logging.FieldFingerprint, cache.Fingerprint(cred.AuthorizationHeader())))
		return cred, nil
	}
	log.Error("No authentication method configured", zap.String("path", rc.Path))
	return Credential{}, &ConfigError{Reason: "no authentication method configured"}
}
