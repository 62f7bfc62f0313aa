package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sofatutor/copilot-metrics-gateway/internal/apptoken"
	"github.com/sofatutor/copilot-metrics-gateway/internal/auth"
	"github.com/sofatutor/copilot-metrics-gateway/internal/authz"
	"github.com/sofatutor/copilot-metrics-gateway/internal/cache"
	"github.com/sofatutor/copilot-metrics-gateway/internal/config"
	"github.com/sofatutor/copilot-metrics-gateway/internal/copilot"
	"github.com/sofatutor/copilot-metrics-gateway/internal/github"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"github.com/sofatutor/copilot-metrics-gateway/internal/server"
	"github.com/sofatutor/copilot-metrics-gateway/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Server command flags
var (
	serverEnvFile    string
	serverListenAddr string
	serverLogLevel   string
	serverConfigPath string
	debugMode        bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gateway HTTP server",
	Run:   runServer,
}

func init() {
	serverCmd.Flags().StringVar(&serverEnvFile, "env", config.EnvOrDefault("ENV", ".env"), "Path to .env file")
	serverCmd.Flags().StringVar(&serverListenAddr, "addr", "", "Address to listen on (overrides LISTEN_ADDR)")
	serverCmd.Flags().StringVar(&serverLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	serverCmd.Flags().StringVarP(&serverConfigPath, "config", "c", config.EnvOrDefault("CONFIG_PATH", ""), "Path to YAML config file (replaces environment configuration)")
	serverCmd.Flags().BoolVarP(&debugMode, "debug", "v", config.EnvBoolOrDefault("DEBUG", false), "Enable debug logging (overrides log-level)")
}

// loadEnvFile loads path into the environment when it exists.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("Warning: Error loading %s file: %v", path, err)
	}
}

// loadConfig reads configuration from the YAML file when one is given and
// from the environment otherwise, then applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if serverConfigPath != "" {
		cfg, err = config.LoadFromFile(serverConfigPath)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}
	if serverListenAddr != "" {
		cfg.ListenAddr = serverListenAddr
	}
	if serverLogLevel != "" {
		cfg.LogLevel = serverLogLevel
	}
	if debugMode {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// gateway is the fully wired application.
type gateway struct {
	server *server.Server
	tokens *apptoken.Cache
	redis  *redis.Client
}

func (g *gateway) close() {
	if g.redis != nil {
		_ = g.redis.Close()
	}
}

// newRedisClient connects to the configured Redis when the response cache
// uses it.
func newRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.ResponseCacheBackend != config.CacheBackendRedis {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// newGateway wires configuration into the service graph.
func newGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gateway, error) {
	audit := logging.NewAuditLogger(logger)

	rdb, err := newRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	g := &gateway{redis: rdb}

	store, err := cache.New(cfg.ResponseCacheBackend, rdb, cfg.RedisPrefix, logger)
	if err != nil {
		g.close()
		return nil, err
	}

	client, err := github.NewClient(cfg.GitHubAPIURL, cfg.RequestTimeout, logger)
	if err != nil {
		g.close()
		return nil, err
	}

	authOpts := auth.Options{
		MockGlobal:   cfg.IsDataMocked,
		Token:        cfg.GitHubToken,
		OAuthEnabled: cfg.OAuthEnabled,
		Policy:       authz.ParsePolicy(cfg.AuthorizedUsers),
	}
	if cfg.GitHubApp.Configured() {
		g.tokens, err = newTokenCache(cfg, client, logger, audit)
		if err != nil {
			g.close()
			return nil, err
		}
		authOpts.AppTokens = g.tokens
	}
	authenticator := auth.New(authOpts, logger)
	if !authenticator.Configured() {
		logger.Warn("No GitHub credential source configured; API requests will fail until one is set")
	}

	svc := service.New(authenticator, client, store, service.Config{
		Defaults: copilot.Defaults{
			Scope:      copilot.Scope(cfg.Scope),
			GitHubOrg:  cfg.GitHubOrg,
			GitHubEnt:  cfg.GitHubEnt,
			GitHubTeam: cfg.GitHubTeam,
		},
		TTL:               cfg.ResponseCacheTTL,
		AllowMockRequests: cfg.AllowMockRequests,
		FetchTimeout:      cfg.RequestTimeout,
	}, logger)

	deps := server.Deps{
		API:    svc,
		Logger: logger,
		Audit:  audit,
	}
	if rdb != nil {
		deps.Ready = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if g.tokens != nil {
		deps.TokenStats = g.tokens.Stats
	}
	g.server = server.New(cfg, deps)
	return g, nil
}

func newTokenCache(cfg *config.Config, exchanger apptoken.Exchanger, logger *zap.Logger, audit *logging.AuditLogger) (*apptoken.Cache, error) {
	return apptoken.New(apptoken.Config{
		AppID:          cfg.GitHubApp.AppID,
		PrivateKey:     cfg.GitHubApp.PrivateKey,
		InstallationID: cfg.GitHubApp.InstallationID,
	}, exchanger, apptoken.Options{
		Buffer:   cfg.GitHubApp.TokenBuffer,
		Cooldown: cfg.GitHubApp.TokenCooldown,
		Logger:   logger,
		Audit:    audit,
	})
}

// runServer is the main function for the server command
func runServer(cmd *cobra.Command, args []string) {
	loadEnvFile(serverEnvFile)

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		osExit(1)
		return
	}

	zapLogger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		osExit(1)
		return
	}
	defer func() {
		if err := zapLogger.Sync(); err != nil {
			if !strings.Contains(err.Error(), "inappropriate ioctl for device") {
				log.Printf("Error syncing zap logger: %v", err)
			}
		}
	}()

	g, err := newGateway(cmd.Context(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize gateway", zap.Error(err))
	}
	defer g.close()

	// Handle graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := g.server.Start(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server error", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started",
		zap.String("addr", cfg.ListenAddr),
		zap.String("cache_backend", cfg.ResponseCacheBackend),
		zap.Bool("mock_data", cfg.IsDataMocked))

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println("Press Ctrl+C to stop")
	}

	<-done
	zapLogger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := g.server.Shutdown(ctx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited gracefully")
}
