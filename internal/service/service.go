// Package service implements the request path shared by every API endpoint:
// resolve options, authenticate, consult the response cache and fetch from
// GitHub on a miss.
package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sofatutor/copilot-metrics-gateway/internal/auth"
	"github.com/sofatutor/copilot-metrics-gateway/internal/cache"
	"github.com/sofatutor/copilot-metrics-gateway/internal/copilot"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched metrics payload is served from cache.
const DefaultTTL = 5 * time.Minute

// ErrNotImplemented is returned by endpoints that only serve mock data.
var ErrNotImplemented = errors.New("endpoint not implemented for live data")

// Resolver resolves the upstream credential for a request.
type Resolver interface {
	Resolve(ctx context.Context, rc auth.RequestContext) (auth.Credential, error)
}

// Fetcher reads Copilot data from GitHub.
type Fetcher interface {
	FetchMetrics(ctx context.Context, authorization, path string) ([]copilot.MetricsDay, error)
	FetchSeats(ctx context.Context, authorization, path string) ([]copilot.Seat, error)
	ListTeams(ctx context.Context, authorization string, opts copilot.QueryOptions) ([]copilot.Team, error)
	ListTeamMembers(ctx context.Context, authorization string, opts copilot.QueryOptions) ([]copilot.TeamMember, error)
}

// Config tunes a Service.
type Config struct {
	Defaults copilot.Defaults
	TTL      time.Duration
	// AllowMockRequests lets the mock query flag switch a request to mock
	// data. When false only the global mock setting does.
	AllowMockRequests bool
	// FetchTimeout bounds a shared upstream fetch. Zero means no bound
	// beyond the HTTP client's.
	FetchTimeout time.Duration
}

// Request is the transport-independent view of an API call.
type Request struct {
	// URI is the request path and raw query; it namespaces cache entries.
	URI     string
	Query   url.Values
	Session *auth.Session
	// Locale is the fallback locale from Accept-Language.
	Locale string
}

// Stats is a snapshot of service counters.
type Stats struct {
	Requests        int64       `json:"requests"`
	MockResponses   int64       `json:"mock_responses"`
	UpstreamFetches int64       `json:"upstream_fetches"`
	UpstreamErrors  int64       `json:"upstream_errors"`
	Cache           cache.Stats `json:"cache"`
}

// Service serves Copilot data for the HTTP layer.
type Service struct {
	auth    Resolver
	fetcher Fetcher
	cache   cache.Store
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
	flights singleflight.Group

	requests        atomic.Int64
	mockResponses   atomic.Int64
	upstreamFetches atomic.Int64
	upstreamErrors  atomic.Int64
}

// New creates a Service.
func New(resolver Resolver, fetcher Fetcher, store cache.Store, cfg Config, logger *zap.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		auth:    resolver,
		fetcher: fetcher,
		cache:   store,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// options parses the query and applies the mock and locale rules.
func (s *Service) options(req Request) copilot.QueryOptions {
	opts := copilot.ParseQuery(req.Query, s.cfg.Defaults)
	if opts.Locale == "" {
		opts.Locale = req.Locale
	}
	opts.Mock = opts.Mock && s.cfg.AllowMockRequests
	return opts
}

// authenticate resolves the credential for req. It runs before any cache
// access.
func (s *Service) authenticate(ctx context.Context, req Request, opts copilot.QueryOptions) (auth.Credential, error) {
	s.requests.Add(1)
	path := req.URI
	if u, err := url.Parse(req.URI); err == nil {
		path = u.Path
	}
	cred, err := s.auth.Resolve(ctx, auth.RequestContext{Mock: opts.Mock, Session: req.Session, Path: path})
	if err != nil {
		return auth.Credential{}, err
	}
	if cred.Mock() {
		s.mockResponses.Add(1)
	}
	return cred, nil
}

// Metrics returns the Copilot metrics days for req.
func (s *Service) Metrics(ctx context.Context, req Request) ([]copilot.MetricsDay, error) {
	opts := s.options(req)
	cred, err := s.authenticate(ctx, req, opts)
	if err != nil {
		return nil, err
	}
	if cred.Mock() {
		return s.mockMetrics(opts)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	path, err := opts.MetricsPath()
	if err != nil {
		return nil, err
	}

	authorization := cred.AuthorizationHeader()
	// The filter inputs change the payload but may not appear verbatim in the
	// URI: the locale can come from Accept-Language and a bare flag is empty.
	key := cache.BuildKey(req.URI, map[string]any{
		"locale":          opts.Locale,
		"excludeHolidays": strconv.FormatBool(opts.ExcludeHolidays),
	}, authorization)
	log := logging.WithContext(ctx, s.logger).With(zap.String(logging.FieldFingerprint, cache.Fingerprint(authorization)))

	if entry, ok := s.cache.Get(ctx, key); ok {
		if entry.Valid(s.now()) {
			log.Debug("Serving metrics from cache", zap.String("path", path))
			return entry.Data, nil
		}
		s.cache.Invalidate(ctx, key)
	}

	ch := s.flights.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if s.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, s.cfg.FetchTimeout)
			defer cancel()
		}
		// A flight that finished while we waited may have stored it.
		if entry, ok := s.cache.Peek(fctx, key); ok && entry.Valid(s.now()) {
			return entry.Data, nil
		}
		s.upstreamFetches.Add(1)
		days, err := s.fetcher.FetchMetrics(fctx, authorization, path)
		if err != nil {
			s.upstreamErrors.Add(1)
			s.cache.Invalidate(fctx, key)
			log.Warn("Upstream metrics fetch failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		days = copilot.FilterHolidays(copilot.Normalize(days), opts.ExcludeHolidays, opts.Locale, log)
		s.cache.Put(fctx, key, cache.Entry{Data: days, ValidUntil: s.now().Add(s.cfg.TTL)})
		log.Debug("Cached upstream metrics", zap.String("path", path), zap.Int("days", len(days)))
		return days, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]copilot.MetricsDay), nil
	}
}

func (s *Service) mockMetrics(opts copilot.QueryOptions) ([]copilot.MetricsDay, error) {
	templates, err := copilot.MetricsTemplates(opts.Scope)
	if err != nil {
		return nil, err
	}
	days, err := copilot.Shift(templates, opts.Since, opts.Until, opts.ExcludeHolidays, opts.Locale, s.now())
	if err != nil {
		return nil, err
	}
	return copilot.Normalize(days), nil
}

// GitHubStats aggregates the metrics days for req.
func (s *Service) GitHubStats(ctx context.Context, req Request) (copilot.GitHubStats, error) {
	days, err := s.Metrics(ctx, req)
	if err != nil {
		return copilot.GitHubStats{}, err
	}
	return copilot.CalculateStats(days), nil
}

// Seats returns the seat assignments for req, one per user.
func (s *Service) Seats(ctx context.Context, req Request) ([]copilot.Seat, error) {
	opts := s.options(req)
	cred, err := s.authenticate(ctx, req, opts)
	if err != nil {
		return nil, err
	}
	if cred.Mock() {
		seats, err := copilot.SeatTemplates(opts.Scope)
		if err != nil {
			return nil, err
		}
		return copilot.DedupeSeats(seats), nil
	}
	path, err := opts.SeatsPath()
	if err != nil {
		return nil, err
	}
	s.upstreamFetches.Add(1)
	seats, err := s.fetcher.FetchSeats(ctx, cred.AuthorizationHeader(), path)
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, err
	}
	return copilot.DedupeSeats(seats), nil
}

// TeamsResult lists teams and, when a team is selected, its members.
type TeamsResult struct {
	Teams   []copilot.Team       `json:"teams"`
	Members []copilot.TeamMember `json:"members,omitempty"`
}

// Teams returns the teams visible for req.
func (s *Service) Teams(ctx context.Context, req Request) (TeamsResult, error) {
	opts := s.options(req)
	cred, err := s.authenticate(ctx, req, opts)
	if err != nil {
		return TeamsResult{}, err
	}
	if cred.Mock() {
		teams, err := copilot.TeamTemplates()
		if err != nil {
			return TeamsResult{}, err
		}
		return TeamsResult{Teams: teams}, nil
	}

	authorization := cred.AuthorizationHeader()
	s.upstreamFetches.Add(1)
	teams, err := s.fetcher.ListTeams(ctx, authorization, opts)
	if err != nil {
		s.upstreamErrors.Add(1)
		return TeamsResult{}, err
	}
	res := TeamsResult{Teams: teams}
	if opts.GitHubTeam != "" {
		s.upstreamFetches.Add(1)
		if res.Members, err = s.fetcher.ListTeamMembers(ctx, authorization, opts); err != nil {
			s.upstreamErrors.Add(1)
			return TeamsResult{}, err
		}
	}
	return res, nil
}

// TeamMetrics returns a synthetic daily series for the teams named in the
// "teams" query parameter. Live data is not supported.
func (s *Service) TeamMetrics(ctx context.Context, req Request) ([]copilot.TeamDayMetrics, error) {
	opts := s.options(req)
	cred, err := s.authenticate(ctx, req, opts)
	if err != nil {
		return nil, err
	}
	if !cred.Mock() {
		return nil, ErrNotImplemented
	}
	days, err := copilot.TeamSeriesDays(opts.Since, opts.Until, s.now())
	if err != nil {
		return nil, err
	}
	return copilot.MockTeamSeries(copilot.ParseTeams(req.Query.Get("teams")), days), nil
}

// TeamComparisons returns synthetic language and editor breakdowns for the
// teams named in the "teams" query parameter. Live data is not supported.
func (s *Service) TeamComparisons(ctx context.Context, req Request) (copilot.TeamComparison, error) {
	opts := s.options(req)
	cred, err := s.authenticate(ctx, req, opts)
	if err != nil {
		return copilot.TeamComparison{}, err
	}
	if !cred.Mock() {
		return copilot.TeamComparison{}, ErrNotImplemented
	}
	return copilot.MockTeamComparison(copilot.ParseTeams(req.Query.Get("teams"))), nil
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return Stats{
		Requests:        s.requests.Load(),
		MockResponses:   s.mockResponses.Load(),
		UpstreamFetches: s.upstreamFetches.Load(),
		UpstreamErrors:  s.upstreamErrors.Load(),
		Cache:           s.cache.Stats(),
	}
}
