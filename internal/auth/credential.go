package auth

import (
	"net/http"
	"time"

	"github.com/sofatutor/copilot-metrics-gateway/internal/authz"
)

// Strategy names, in resolution order.
const (
	StrategyMock  = "mock"
	StrategyApp   = "github-app"
	StrategyToken = "personal-token"
	StrategyOAuth = "oauth"
)

// MockCredential is the placeholder handed out in mock mode. It is never
// sent upstream.
const MockCredential = "mock-token"

// Credential is a resolved upstream credential and the strategy that
// produced it.
type Credential struct {
	Value    string
	Strategy string
}

// Mock reports whether the credential is the mock placeholder.
func (c Credential) Mock() bool {
	return c.Strategy == StrategyMock
}

// AuthorizationHeader returns the upstream Authorization header value.
func (c Credential) AuthorizationHeader() string {
	return "token " + c.Value
}

// Headers returns the headers every upstream call carries.
func (c Credential) Headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	h.Set("X-GitHub-Api-Version", "2022-11-28")
	h.Set("Authorization", c.AuthorizationHeader())
	return h
}

// Session is the login state a caller presents. AccessToken is empty for
// sessions that only carry an identity.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Identity    authz.Identity
}

// RequestContext is what strategies may look at to resolve a credential.
type RequestContext struct {
	// Mock is the effective per-request mock flag.
	Mock bool
	// Session is nil when the caller has no login session.
	Session *Session
	// Path is the requested path, used for logging only.
	Path string
}
