package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sofatutor/copilot-metrics-gateway/internal/apptoken"
	"github.com/sofatutor/copilot-metrics-gateway/internal/authz"
)

// OAuthExpiryLeeway is how close to expiry a session token stops being used.
const OAuthExpiryLeeway = 30 * time.Second

// Strategy resolves a credential one way. Applies reports whether the
// strategy is responsible for rc; the first strategy that applies decides.
type Strategy interface {
	Name() string
	Applies(rc RequestContext) bool
	Resolve(ctx context.Context, rc RequestContext) (Credential, error)
}

// MockStrategy hands out the placeholder credential when mock data is
// requested or forced globally.
type MockStrategy struct {
	Global bool
}

func (s MockStrategy) Name() string { return StrategyMock }

func (s MockStrategy) Applies(rc RequestContext) bool { return s.Global || rc.Mock }

func (s MockStrategy) Resolve(context.Context, RequestContext) (Credential, error) {
	return Credential{Value: MockCredential, Strategy: StrategyMock}, nil
}

// TokenSource yields GitHub App installation tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AppStrategy uses a GitHub App installation token. With LoginEnabled the
// session identity must pass Policy before a token is handed out.
type AppStrategy struct {
	Tokens       TokenSource
	LoginEnabled bool
	Policy       authz.Policy
}

func (s AppStrategy) Name() string { return StrategyApp }

func (s AppStrategy) Applies(RequestContext) bool { return s.Tokens != nil }

func (s AppStrategy) Resolve(ctx context.Context, rc RequestContext) (Credential, error) {
	if s.LoginEnabled {
		if rc.Session == nil {
			return Credential{}, &AuthError{Reason: "login required"}
		}
		if err := authorizeSession(*rc.Session, s.Policy); err != nil {
			return Credential{}, err
		}
	}
	tok, err := s.Tokens.Token(ctx)
	if err != nil {
		var cfgErr *apptoken.ConfigError
		if errors.As(err, &cfgErr) {
			return Credential{}, &ConfigError{Reason: "github app", Err: err}
		}
		if errors.Is(err, apptoken.ErrCoolingDown) {
			return Credential{}, &AuthError{Reason: "installation token unavailable", Status: http.StatusServiceUnavailable, Err: err}
		}
		return Credential{}, fmt.Errorf("installation token: %w", err)
	}
	return Credential{Value: tok, Strategy: StrategyApp}, nil
}

// TokenStrategy uses a static server-side personal access token.
type TokenStrategy struct {
	Token string
}

func (s TokenStrategy) Name() string { return StrategyToken }

func (s TokenStrategy) Applies(RequestContext) bool { return s.Token != "" }

func (s TokenStrategy) Resolve(context.Context, RequestContext) (Credential, error) {
	return Credential{Value: s.Token, Strategy: StrategyToken}, nil
}

// OAuthStrategy uses the access token stored in the caller's login
// session. Tokens within OAuthExpiryLeeway of expiry count as absent.
type OAuthStrategy struct {
	Enabled bool
	Policy  authz.Policy
	Now     func() time.Time
}

func (s OAuthStrategy) Name() string { return StrategyOAuth }

func (s OAuthStrategy) Applies(RequestContext) bool { return s.Enabled }

func (s OAuthStrategy) Resolve(_ context.Context, rc RequestContext) (Credential, error) {
	if rc.Session == nil || rc.Session.AccessToken == "" {
		return Credential{}, &AuthError{Reason: "no session token"}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if exp := rc.Session.ExpiresAt; !exp.IsZero() && !exp.After(now().Add(OAuthExpiryLeeway)) {
		return Credential{}, &AuthError{Reason: "session token expired"}
	}
	if err := authorizeSession(*rc.Session, s.Policy); err != nil {
		return Credential{}, err
	}
	return Credential{Value: rc.Session.AccessToken, Strategy: StrategyOAuth}, nil
}

// authorizeSession maps allow-list failures: a missing identity is an
// authentication problem, a denied one is returned as authz.ErrDenied.
func authorizeSession(s Session, p authz.Policy) error {
	err := authz.Authorize(s.Identity, p)
	if errors.Is(err, authz.ErrNoIdentity) {
		return &AuthError{Reason: "no user identity", Err: err}
	}
	return err
}
