// Package apptoken caches GitHub App installation tokens and refreshes them
// before they expire.
package apptoken

import (
	"context"
	"crypto/rsa"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultBuffer is how long before expiry a cached token stops being served.
	DefaultBuffer = 300 * time.Second
	// DefaultCooldown suspends exchanges after an upstream 401.
	DefaultCooldown = 30 * time.Second
	// TokenLifetime is the fixed validity GitHub grants installation tokens.
	TokenLifetime = time.Hour

	exchangeTimeout = 30 * time.Second
)

// ConfigError reports missing GitHub App settings.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "github app configuration incomplete: missing " + strings.Join(e.Missing, ", ")
}

// Config identifies the app installation.
type Config struct {
	AppID          int64
	PrivateKey     string
	InstallationID int64
}

func (c Config) validate() error {
	var missing []string
	if c.AppID == 0 {
		missing = append(missing, "app id")
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		missing = append(missing, "private key")
	}
	if c.InstallationID == 0 {
		missing = append(missing, "installation id")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// Exchanger trades a signed app assertion for an installation token.
type Exchanger interface {
	ExchangeInstallationToken(ctx context.Context, installationID int64, assertion string) (string, error)
}

// Options tune a Cache. Zero values use the defaults.
type Options struct {
	Buffer   time.Duration
	Cooldown time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
	Audit    *logging.AuditLogger
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits      int64     `json:"hits"`
	Misses    int64     `json:"misses"`
	Exchanges int64     `json:"exchanges"`
	Failures  int64     `json:"failures"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cache holds one installation token. Concurrent misses share a single
// exchange.
type Cache struct {
	cfg       Config
	key       *rsa.PrivateKey
	exchanger Exchanger
	buffer    time.Duration
	now       func() time.Time
	logger    *zap.Logger
	audit     *logging.AuditLogger

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group   singleflight.Group
	breaker *breaker

	hits      atomic.Int64
	misses    atomic.Int64
	exchanges atomic.Int64
	failures  atomic.Int64
}

// New validates cfg, parses the private key and returns an empty cache.
func New(cfg Config, exchanger Exchanger, opts Options) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		cfg:       cfg,
		key:       key,
		exchanger: exchanger,
		buffer:    opts.Buffer,
		now:       opts.Now,
		logger:    opts.Logger,
		audit:     opts.Audit,
		breaker:   &breaker{cooldown: opts.Cooldown, now: opts.Now},
	}, nil
}

// Token returns a token valid for at least the buffer window, exchanging a
// new one when needed.
func (c *Cache) Token(ctx context.Context) (string, error) {
	if tok, ok := c.cached(); ok {
		c.hits.Add(1)
		return tok, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan("installation-token", func() (any, error) {
		// A flight that finished while we waited may have refreshed it.
		if tok, ok := c.cached(); ok {
			return tok, nil
		}
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Cache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token != "" && c.expiresAt.After(c.now().Add(c.buffer)) {
		return c.token, true
	}
	return "", false
}

func (c *Cache) refresh(ctx context.Context) (string, error) {
	if err := c.breaker.allow(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	now := c.now()
	assertion, err := SignAssertion(c.cfg.AppID, c.key, now)
	if err != nil {
		return "", err
	}
	c.exchanges.Add(1)
	tok, err := c.exchanger.ExchangeInstallationToken(ctx, c.cfg.InstallationID, assertion)
	c.breaker.record(err)
	if err != nil {
		c.failures.Add(1)
		c.logger.Warn("Installation token exchange failed",
			zap.Int64("installation_id", c.cfg.InstallationID),
			zap.Error(err))
		c.audit.LogTokenExchange(ctx, c.cfg.InstallationID, logging.AuditOutcomeFailure, err.Error(), time.Time{})
		return "", err
	}

	expiresAt := now.Add(TokenLifetime)
	c.mu.Lock()
	c.token = tok
	c.expiresAt = expiresAt
	c.mu.Unlock()

	c.logger.Debug("Installation token refreshed",
		zap.Int64("installation_id", c.cfg.InstallationID),
		zap.Time("expires_at", expiresAt))
	c.audit.LogTokenExchange(ctx, c.cfg.InstallationID, logging.AuditOutcomeSuccess, "", expiresAt)
	return tok, nil
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	expiresAt := c.expiresAt
	c.mu.RUnlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Exchanges: c.exchanges.Load(),
		Failures:  c.failures.Load(),
		ExpiresAt: expiresAt,
	}
}
