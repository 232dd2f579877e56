package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the podreg configuration
type Config struct {
	Manifest string       `mapstructure:"manifest"`
	Log      LogConfig    `mapstructure:"log"`
	Server   ServerConfig `mapstructure:"server"`
	Auth     AuthConfig   `mapstructure:"auth"`
	Store    StoreConfig  `mapstructure:"store"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// ServerConfig represents introspection server configuration
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	Host    string `mapstructure:"host"`
	Pprof   bool   `mapstructure:"pprof"`
	Metrics bool   `mapstructure:"metrics"`
	// AllowedOrigins may open /events to browser pages served elsewhere
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles API clients. Requests 0 disables limiting.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Backend  string        `mapstructure:"backend"` // "memory" or "redis"
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig represents API authentication configuration.
// An empty JWTSecret disables authentication.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StoreConfig represents snapshot store configuration
type StoreConfig struct {
	Driver string      `mapstructure:"driver"` // sqlite3, pgx, postgres or redis
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents the Redis store settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

var validDrivers = map[string]bool{
	"sqlite3":  true,
	"pgx":      true,
	"postgres": true,
	"redis":    true,
}

// Load loads the configuration from path, or from podreg.yml/podreg.yaml in
// the working directory when path is empty. Environment variables prefixed
// with PODREG_ override file values (PODREG_STORE_DSN for store.dsn).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("manifest", "pods.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 4040)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.pprof", false)
	v.SetDefault("server.metrics", false)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit.requests", 0)
	v.SetDefault("server.rate_limit.window", time.Minute)
	v.SetDefault("server.rate_limit.backend", "memory")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "podreg.db")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "podreg:")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("podreg")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("PODREG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !validDrivers[cfg.Store.Driver] {
		return fmt.Errorf("store.driver must be one of sqlite3, pgx, postgres, redis, got: %s", cfg.Store.Driver)
	}
	if cfg.Store.Driver != "redis" && cfg.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %s", cfg.Store.Driver)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if rl := cfg.Server.RateLimit; rl.Requests > 0 {
		if rl.Window <= 0 {
			return fmt.Errorf("server.rate_limit.window must be positive, got: %s", rl.Window)
		}
		if rl.Backend != "memory" && rl.Backend != "redis" {
			return fmt.Errorf("server.rate_limit.backend must be memory or redis, got: %s", rl.Backend)
		}
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	return nil
}
