// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Discovery modes.
const (
	DiscoveryStatic   = "static"
	DiscoveryHTTP     = "http"
	DiscoveryDatabase = "database"
)

// Component names under the components key.
const (
	ComponentCache = "cache"
	ComponentLock  = "lock"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Purge     PurgeConfig     `mapstructure:"purge"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`

	v *viper.Viper
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"` // development, staging, production
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"`
	OpenTimeout     time.Duration `mapstructure:"open_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig holds REST surface settings.
type HTTPConfig struct {
	BodyLimit int           `mapstructure:"body_limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"` // used when a store request has no ttl_ms
	LockTTL   time.Duration `mapstructure:"lock_ttl"`  // used when a lock request has no ttl_ms
}

// PurgeConfig holds the scheduled cache purge settings.
type PurgeConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	OnStartup bool          `mapstructure:"on_startup"`
}

// DatabaseConfig holds registry database settings, used by the database
// discovery mode.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	LogQueries   bool          `mapstructure:"log_queries"`
	Migrate      bool          `mapstructure:"migrate"`
}

// DiscoveryConfig selects and configures how discovery and credential keys
// are resolved.
type DiscoveryConfig struct {
	Mode        string                      `mapstructure:"mode"` // static, http, database
	BaseURL     string                      `mapstructure:"base_url"`
	Timeout     time.Duration               `mapstructure:"timeout"`
	Retry       RetryConfig                 `mapstructure:"retry"`
	CB          CBConfig                    `mapstructure:"circuit_breaker"`
	Connections map[string]StaticConnection `mapstructure:"connections"`
	Credentials map[string]StaticCredential `mapstructure:"credentials"`
}

// StaticConnection is a connection seeded from configuration.
type StaticConnection struct {
	URI  string `mapstructure:"uri"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StaticCredential is a credential seeded from configuration.
type StaticCredential struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// ComponentParams returns the parameters of the named component, the
// components.<name> subtree with defaults, file values and env overrides
// merged. It never returns nil.
func (c *Config) ComponentParams(name string) *viper.Viper {
	params := viper.New()
	if c.v == nil {
		return params
	}

	prefix := "components." + name + "."
	for _, key := range c.v.AllKeys() {
		if strings.HasPrefix(key, prefix) {
			params.Set(strings.TrimPrefix(key, prefix), c.v.Get(key))
		}
	}

	return params
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.v = v

	switch cfg.Discovery.Mode {
	case DiscoveryStatic, DiscoveryHTTP, DiscoveryDatabase:
	default:
		return nil, fmt.Errorf("unknown discovery mode %q", cfg.Discovery.Mode)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "cachelock-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.open_timeout", "90s")
	v.SetDefault("app.shutdown_timeout", "10s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "cachelock")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.migrate", true)

	// Discovery defaults
	v.SetDefault("discovery.mode", DiscoveryStatic)
	v.SetDefault("discovery.base_url", "http://localhost:8081")
	v.SetDefault("discovery.timeout", "5s")
	v.SetDefault("discovery.retry.max_attempts", 3)
	v.SetDefault("discovery.retry.wait_time", "500ms")
	v.SetDefault("discovery.retry.max_wait_time", "2s")
	v.SetDefault("discovery.circuit_breaker.max_requests", 3)
	v.SetDefault("discovery.circuit_breaker.interval", "60s")
	v.SetDefault("discovery.circuit_breaker.timeout", "30s")
	v.SetDefault("discovery.circuit_breaker.failure_ratio", 0.5)

	// HTTP defaults
	v.SetDefault("http.body_limit", 1024*1024)
	v.SetDefault("http.cache_ttl", "10m")
	v.SetDefault("http.lock_ttl", "30s")

	// Purge defaults
	v.SetDefault("purge.enabled", false)
	v.SetDefault("purge.interval", "1h")
	v.SetDefault("purge.timeout", "1m")
	v.SetDefault("purge.on_startup", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Component defaults
	v.SetDefault("components.cache.connection.host", "localhost")
	v.SetDefault("components.cache.connection.port", 6379)
	v.SetDefault("components.cache.options.timeout", 60000)
	v.SetDefault("components.cache.options.retries", 3)
	v.SetDefault("components.cache.options.key_prefix", "cachelock")
	v.SetDefault("components.cache.options.codec", "json")
	v.SetDefault("components.lock.connection.host", "localhost")
	v.SetDefault("components.lock.connection.port", 6379)
	v.SetDefault("components.lock.options.timeout", 60000)
	v.SetDefault("components.lock.options.retries", 3)
	v.SetDefault("components.lock.options.retry_timeout", 100)
}
