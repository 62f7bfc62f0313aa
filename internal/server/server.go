// Package server implements the HTTP server for the Copilot metrics gateway.
// It handles request routing, lifecycle management, and provides
// health check endpoints and the dashboard API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sofatutor/copilot-metrics-gateway/internal/apptoken"
	"github.com/sofatutor/copilot-metrics-gateway/internal/config"
	"github.com/sofatutor/copilot-metrics-gateway/internal/copilot"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"github.com/sofatutor/copilot-metrics-gateway/internal/middleware"
	"github.com/sofatutor/copilot-metrics-gateway/internal/service"
	"go.uber.org/zap"
)

// Version is the application version, following semantic versioning.
const Version = "0.1.0"

// SessionName is the cookie holding the login session.
const SessionName = "copilot_metrics_session"

// API is the data layer the handlers call.
type API interface {
	Metrics(ctx context.Context, req service.Request) ([]copilot.MetricsDay, error)
	GitHubStats(ctx context.Context, req service.Request) (copilot.GitHubStats, error)
	Seats(ctx context.Context, req service.Request) ([]copilot.Seat, error)
	Teams(ctx context.Context, req service.Request) (service.TeamsResult, error)
	TeamMetrics(ctx context.Context, req service.Request) ([]copilot.TeamDayMetrics, error)
	TeamComparisons(ctx context.Context, req service.Request) (copilot.TeamComparison, error)
	Stats() service.Stats
}

// Deps are the collaborators a Server needs besides its configuration.
type Deps struct {
	API    API
	Logger *zap.Logger
	Audit  *logging.AuditLogger
	// Ready reports whether backing services are reachable. Optional.
	Ready func(ctx context.Context) error
	// TokenStats reports installation token activity. Optional.
	TokenStats func() apptoken.Stats
}

// Server represents the HTTP server for the gateway.
// It encapsulates the underlying http.Server along with application configuration
// and handles request routing and server lifecycle management.
type Server struct {
	server    *http.Server
	engine    *gin.Engine
	config    *config.Config
	deps      Deps
	logger    *zap.Logger
	counters  *middleware.Counters
	startTime time.Time
	sessions  bool
}

// HealthResponse is the response body for the health check endpoint.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds float64   `json:"uptime_seconds"`
}

// New creates the gin engine, registers every route and wraps it in an
// http.Server. The server is not started until Start is called.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		logger:    deps.Logger,
		counters:  &middleware.Counters{},
		startTime: time.Now(),
		sessions:  cfg.SessionPassword != "",
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(s.logger, s.counters))
	if s.sessions {
		store := cookie.NewStore([]byte(cfg.SessionPassword))
		store.Options(sessions.Options{
			Path:     "/",
			MaxAge:   int(cfg.SessionMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   cfg.SessionSecure,
			SameSite: http.SameSiteLaxMode,
		})
		engine.Use(sessions.Sessions(SessionName, store))
	}
	s.engine = engine
	s.routes()

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      engine,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  cfg.RequestTimeout * 2,
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ready", s.handleReady)
	s.engine.GET("/live", s.handleLive)
	if s.config.EnableMetrics {
		path := s.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.engine.GET(path, s.handleMetrics)
	}

	api := s.engine.Group("/api")
	if s.config.BasicAuth.Enabled {
		api.Use(gin.BasicAuthForRealm(gin.Accounts{
			s.config.BasicAuth.Username: s.config.BasicAuth.Password,
		}, "Copilot Metrics"))
	}
	api.GET("/metrics", s.handleMetricsData)
	api.GET("/github-stats", s.handleGitHubStats)
	api.GET("/seats", s.handleSeats)
	api.GET("/teams", s.handleTeams)
	api.GET("/team-metrics", s.handleTeamMetrics)
	api.GET("/team-comparisons", s.handleTeamComparisons)

	s.engine.POST("/auth/logout", s.handleLogout)

	s.engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address. It blocks until the server is
// shut down and returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("Server starting", zap.String("listen_addr", s.config.ListenAddr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server without interrupting
// active connections. It waits for all connections to complete
// or for the provided context to be canceled, whichever comes first.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleHealth responds with status, timestamp, version and uptime.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now(),
		Version:       Version,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	})
}

// handleReady is used for readiness probes.
func (s *Server) handleReady(c *gin.Context) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			s.logger.Warn("Readiness check failed", zap.Error(err))
			c.String(http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	c.String(http.StatusOK, "ready")
}

// handleLive is used for liveness probes.
func (s *Server) handleLive(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}

// handleMetrics returns basic runtime metrics in JSON format.
func (s *Server) handleMetrics(c *gin.Context) {
	m := struct {
		UptimeSeconds float64         `json:"uptime_seconds"`
		RequestCount  int64           `json:"request_count"`
		ErrorCount    int64           `json:"error_count"`
		Service       *service.Stats  `json:"service,omitempty"`
		AppToken      *apptoken.Stats `json:"app_token,omitempty"`
	}{
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		RequestCount:  s.counters.Requests.Load(),
		ErrorCount:    s.counters.Errors.Load(),
	}
	if s.deps.API != nil {
		st := s.deps.API.Stats()
		m.Service = &st
	}
	if s.deps.TokenStats != nil {
		ts := s.deps.TokenStats()
		m.AppToken = &ts
	}
	c.JSON(http.StatusOK, m)
}
