package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/peekguard/pkg/observability"
)

// Storage backends for the security event log
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Session       SessionConfig
	Storage       StorageConfig
	Auth          AuthConfig
	Observability ObservabilityConfig

	// Tuning holds client-side thresholds served at /api/client-config
	Tuning Tuning
	// TuningFile, when set, is a YAML file overlaying Tuning and watched for changes
	TuningFile string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// StaticDir serves the browser front end at / when non-empty
	StaticDir string
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	Capacity     int
}

// StorageConfig selects and configures the event log backend
type StorageConfig struct {
	Backend string

	FilePath    string
	SQLitePath  string
	PostgresURL string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// MirrorFilePath, when set, asynchronously mirrors every append to an NDJSON file
	MirrorFilePath string
	// MirrorConcurrency bounds in-flight mirror writes
	MirrorConcurrency int
}

// AuthConfig holds credential and login throttling settings
type AuthConfig struct {
	SeedUser     string
	SeedPassword string
	BcryptCost   int

	// LoginRatePerMinute and LoginBurst configure the per-IP login token bucket
	LoginRatePerMinute int
	LoginBurst         int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Session:       loadSessionConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
		Tuning:        loadTuningFromEnv(DefaultTuning()),
		TuningFile:    getEnv("PEEKGUARD_TUNING_FILE", ""),
	}

	if cfg.TuningFile != "" {
		tuning, err := LoadTuningFile(cfg.TuningFile, cfg.Tuning)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = tuning
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("PEEKGUARD_HOST", "0.0.0.0"),
		Port:            getEnv("PEEKGUARD_PORT", "3000"),
		ReadTimeout:     getEnvDuration("PEEKGUARD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("PEEKGUARD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("PEEKGUARD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("PEEKGUARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		StaticDir:       getEnv("PEEKGUARD_STATIC_DIR", ""),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:          getEnvDuration("PEEKGUARD_SESSION_TTL", time.Hour),
		CookieName:   getEnv("PEEKGUARD_SESSION_COOKIE", "peekguard_session"),
		CookieSecure: getEnvBool("PEEKGUARD_SESSION_COOKIE_SECURE", false),
		Capacity:     getEnvInt("PEEKGUARD_SESSION_CAPACITY", 10000),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:           strings.ToLower(getEnv("PEEKGUARD_STORAGE_BACKEND", BackendMemory)),
		FilePath:          getEnv("PEEKGUARD_EVENTS_FILE", "peekguard-events.ndjson"),
		SQLitePath:        getEnv("PEEKGUARD_SQLITE_PATH", "peekguard.db"),
		PostgresURL:       getEnv("PEEKGUARD_POSTGRES_URL", ""),
		RedisAddr:         getEnv("PEEKGUARD_REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("PEEKGUARD_REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("PEEKGUARD_REDIS_DB", 0),
		RedisKeyPrefix:    getEnv("PEEKGUARD_REDIS_KEY_PREFIX", "peekguard:events:"),
		MirrorFilePath:    getEnv("PEEKGUARD_MIRROR_FILE", ""),
		MirrorConcurrency: getEnvInt("PEEKGUARD_MIRROR_CONCURRENCY", 8),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SeedUser:           getEnv("PEEKGUARD_SEED_USER", "student"),
		SeedPassword:       getEnv("PEEKGUARD_SEED_PASSWORD", "p@ssw0rd123"),
		BcryptCost:         getEnvInt("PEEKGUARD_BCRYPT_COST", bcrypt.DefaultCost),
		LoginRatePerMinute: getEnvInt("PEEKGUARD_LOGIN_RATE_PER_MINUTE", 10),
		LoginBurst:         getEnvInt("PEEKGUARD_LOGIN_BURST", 5),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("PEEKGUARD_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("PEEKGUARD_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("PEEKGUARD_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("PEEKGUARD_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("PEEKGUARD_OTEL_SERVICE_NAME", "peekguard"),
		OTelServiceVersion: getEnv("PEEKGUARD_OTEL_SERVICE_VERSION", "dev"),
		OTelInsecure:       getEnvBool("PEEKGUARD_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}
	if c.Session.Capacity <= 0 {
		return fmt.Errorf("session capacity must be positive")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("events file path is required for file storage")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	case BackendPostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis storage")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory, file, sqlite, postgres, or redis)", c.Storage.Backend)
	}
	if c.Storage.MirrorFilePath != "" && c.Storage.MirrorConcurrency <= 0 {
		return fmt.Errorf("mirror concurrency must be positive")
	}

	if c.Auth.SeedUser != "" && c.Auth.SeedPassword == "" {
		return fmt.Errorf("seed password is required when a seed user is configured")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.LoginRatePerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return fmt.Errorf("login rate limit and burst must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return c.Tuning.Validate()
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
