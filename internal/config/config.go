// Package config handles application configuration loading and validation
// from environment variables and optional YAML files, providing a type-safe
// configuration structure.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Response cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all application configuration values.
// It provides a centralized, type-safe way to access configuration throughout the application.
type Config struct {
	// Server configuration
	ListenAddr     string        `yaml:"listen_addr"`     // Address to listen on (e.g., ":8080")
	RequestTimeout time.Duration `yaml:"request_timeout"` // Timeout for upstream API requests

	// Logging
	LogLevel  string `yaml:"log_level"`  // Log level (debug, info, warn, error)
	LogFormat string `yaml:"log_format"` // Log format (json, console)
	LogFile   string `yaml:"log_file"`   // Path to log file (empty for stdout)

	// Upstream GitHub API
	GitHubAPIURL string          `yaml:"github_api_url"` // Base URL of the GitHub REST API
	GitHubToken  string          `yaml:"github_token"`   // Static personal access token
	GitHubApp    GitHubAppConfig `yaml:"github_app"`     // GitHub App credentials

	// User login (OAuth session established by the login collaborator)
	OAuthEnabled    bool          `yaml:"oauth_enabled"`
	SessionPassword string        `yaml:"session_password"` // Secret used to sign session cookies
	SessionMaxAge   time.Duration `yaml:"session_max_age"`
	SessionSecure   bool          `yaml:"session_secure"` // Mark the session cookie Secure (disable for plain HTTP)

	// Authorization
	AuthorizedUsers string `yaml:"authorized_users"` // Comma separated allow-list; empty allows everyone

	// Data source
	IsDataMocked      bool   `yaml:"is_data_mocked"`      // Serve mock data for every request
	AllowMockRequests bool   `yaml:"allow_mock_requests"` // Honour the per-request mock flag
	Scope             string `yaml:"scope"`               // Default scope when the request omits one
	GitHubOrg         string `yaml:"github_org"`
	GitHubEnt         string `yaml:"github_ent"`
	GitHubTeam        string `yaml:"github_team"`

	// Basic auth gate in front of the API
	BasicAuth BasicAuthConfig `yaml:"basic_auth"`

	// Response cache
	ResponseCacheBackend string        `yaml:"response_cache_backend"` // memory or redis
	ResponseCacheTTL     time.Duration `yaml:"response_cache_ttl"`
	RedisAddr            string        `yaml:"redis_addr"` // Redis server address (e.g., "localhost:6379")
	RedisDB              int           `yaml:"redis_db"`   // Redis database number (default: 0)
	RedisPrefix          string        `yaml:"redis_prefix"`

	// Monitoring
	EnableMetrics bool   `yaml:"enable_metrics"` // Whether to enable a lightweight metrics endpoint
	MetricsPath   string `yaml:"metrics_path"`   // Path for metrics endpoint
}

// GitHubAppConfig holds the credentials used to mint installation tokens.
type GitHubAppConfig struct {
	AppID          int64         `yaml:"app_id"`
	PrivateKey     string        `yaml:"private_key"` // PEM encoded RSA key, literal "\n" sequences allowed
	InstallationID int64         `yaml:"installation_id"`
	TokenBuffer    time.Duration `yaml:"token_buffer"`   // Refresh this long before expiry
	TokenCooldown  time.Duration `yaml:"token_cooldown"` // Back-off after a rejected exchange
}

// Configured reports whether all three App settings are present.
func (a GitHubAppConfig) Configured() bool {
	return a.AppID != 0 && a.PrivateKey != "" && a.InstallationID != 0
}

func (a GitHubAppConfig) partial() bool {
	set := 0
	if a.AppID != 0 {
		set++
	}
	if a.PrivateKey != "" {
		set++
	}
	if a.InstallationID != 0 {
		set++
	}
	return set > 0 && set < 3
}

// BasicAuthConfig configures the optional HTTP basic auth gate.
type BasicAuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// New creates a new configuration with values from environment variables.
// It applies default values where environment variables are not set,
// and validates required configuration settings.
func New() (*Config, error) {
	d := DefaultConfig()
	config := &Config{
		// Server defaults
		ListenAddr:     getEnvString("LISTEN_ADDR", d.ListenAddr),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", d.RequestTimeout),

		// Logging defaults
		LogLevel:  getEnvString("LOG_LEVEL", d.LogLevel),
		LogFormat: getEnvString("LOG_FORMAT", d.LogFormat),
		LogFile:   getEnvString("LOG_FILE", d.LogFile),

		// Upstream
		GitHubAPIURL: getEnvString("GITHUB_API_URL", d.GitHubAPIURL),
		GitHubToken:  getEnvString("GITHUB_TOKEN", ""),
		GitHubApp: GitHubAppConfig{
			AppID:          getEnvInt64("GITHUB_APP_ID", 0),
			PrivateKey:     getEnvString("GITHUB_APP_PRIVATE_KEY", ""),
			InstallationID: getEnvInt64("GITHUB_APP_INSTALLATION_ID", 0),
			TokenBuffer:    getEnvDuration("APP_TOKEN_BUFFER", d.GitHubApp.TokenBuffer),
			TokenCooldown:  getEnvDuration("APP_TOKEN_COOLDOWN", d.GitHubApp.TokenCooldown),
		},

		// User login
		OAuthEnabled:    getEnvBool("OAUTH_ENABLED", false),
		SessionPassword: getEnvString("SESSION_PASSWORD", ""),
		SessionMaxAge:   getEnvDuration("SESSION_MAX_AGE", d.SessionMaxAge),
		SessionSecure:   getEnvBool("SESSION_COOKIE_SECURE", d.SessionSecure),

		AuthorizedUsers: getEnvString("AUTHORIZED_USERS", ""),

		// Data source
		IsDataMocked:      getEnvBool("IS_DATA_MOCKED", false),
		AllowMockRequests: getEnvBool("ALLOW_MOCK_REQUESTS", d.AllowMockRequests),
		Scope:             getEnvString("SCOPE", d.Scope),
		GitHubOrg:         getEnvString("GITHUB_ORG", ""),
		GitHubEnt:         getEnvString("GITHUB_ENT", ""),
		GitHubTeam:        getEnvString("GITHUB_TEAM", ""),

		BasicAuth: BasicAuthConfig{
			Enabled:  getEnvBool("BASIC_AUTH_ENABLED", false),
			Username: getEnvString("BASIC_AUTH_USERNAME", ""),
			Password: getEnvString("BASIC_AUTH_PASSWORD", ""),
		},

		// Response cache
		ResponseCacheBackend: getEnvString("RESPONSE_CACHE_BACKEND", d.ResponseCacheBackend),
		ResponseCacheTTL:     getEnvDuration("RESPONSE_CACHE_TTL", d.ResponseCacheTTL),
		RedisAddr:            getEnvString("REDIS_ADDR", d.RedisAddr),
		RedisDB:              getEnvInt("REDIS_DB", d.RedisDB),
		RedisPrefix:          getEnvString("REDIS_PREFIX", d.RedisPrefix),

		// Monitoring defaults
		EnableMetrics: getEnvBool("ENABLE_METRICS", d.EnableMetrics),
		MetricsPath:   getEnvString("METRICS_PATH", d.MetricsPath),
	}

	if config.GitHubApp.PrivateKey == "" {
		if path := getEnvString("GITHUB_APP_PRIVATE_KEY_FILE", ""); path != "" {
			pem, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read GITHUB_APP_PRIVATE_KEY_FILE: %w", err)
			}
			config.GitHubApp.PrivateKey = string(pem)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings that must be consistent at startup. A deployment
// with no credential source at all is valid here; requests then fail with a
// configuration error.
func (c *Config) Validate() error {
	if c.GitHubApp.partial() {
		return fmt.Errorf("GITHUB_APP_ID, GITHUB_APP_PRIVATE_KEY and GITHUB_APP_INSTALLATION_ID must be set together")
	}
	if c.OAuthEnabled && c.SessionPassword == "" {
		return fmt.Errorf("SESSION_PASSWORD is required when OAUTH_ENABLED is true")
	}
	if c.BasicAuth.Enabled && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return fmt.Errorf("BASIC_AUTH_USERNAME and BASIC_AUTH_PASSWORD are required when BASIC_AUTH_ENABLED is true")
	}
	switch c.ResponseCacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis response cache backend")
		}
	default:
		return fmt.Errorf("unknown RESPONSE_CACHE_BACKEND %q", c.ResponseCacheBackend)
	}
	return nil
}

// getEnvString retrieves a string value from an environment variable,
// falling back to the provided default value if the variable is not set.
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean value from an environment variable,
// falling back to the provided default value if the variable is not set
// or cannot be parsed as a boolean.
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		parsedValue, err := strconv.ParseBool(value)
		if err == nil {
			return parsedValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		parsedValue, err := strconv.Atoi(value)
		if err == nil {
			return parsedValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		parsedValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err == nil {
			return parsedValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration value from an environment variable.
// Bare integers are read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsedValue, err := time.ParseDuration(value); err == nil {
			return parsedValue
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8080",
		RequestTimeout: 30 * time.Second,

		LogLevel:  "info",
		LogFormat: "json",

		GitHubAPIURL: "https://api.github.com/",
		GitHubApp: GitHubAppConfig{
			TokenBuffer:   5 * time.Minute,
			TokenCooldown: 30 * time.Second,
		},

		SessionMaxAge: 8 * time.Hour,
		SessionSecure: true,

		AllowMockRequests: true,
		Scope:             "organization",

		ResponseCacheBackend: CacheBackendMemory,
		ResponseCacheTTL:     5 * time.Minute,
		RedisAddr:            "localhost:6379",
		RedisPrefix:          "copilot-metrics:",

		EnableMetrics: true,
		MetricsPath:   "/metrics",
	}
}
