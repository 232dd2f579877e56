package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// No config file in the working directory
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pods.yaml", cfg.Manifest)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4040, cfg.Server.Port)
	assert.Equal(t, "localhost:4040", cfg.Server.Address())
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, "podreg.db", cfg.Store.DSN)
	assert.Equal(t, "podreg:", cfg.Store.Redis.Prefix)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.False(t, cfg.Server.Pprof)
	assert.False(t, cfg.Server.Metrics)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, RateLimitConfig{Requests: 0, Window: time.Minute, Backend: "memory"}, cfg.Server.RateLimit)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	content := `
manifest: app/pods.yaml
server:
  port: 8080
  host: 0.0.0.0
  pprof: true
  metrics: true
  allowed_origins:
    - https://ui.example
  rate_limit:
    requests: 30
    window: 10s
    backend: redis
store:
  driver: redis
  redis:
    addr: cache:6379
    db: 2
`
	require.NoError(t, os.WriteFile("podreg.yaml", []byte(content), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "app/pods.yaml", cfg.Manifest)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.True(t, cfg.Server.Pprof)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, []string{"https://ui.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, RateLimitConfig{Requests: 30, Window: 10 * time.Second, Backend: "redis"}, cfg.Server.RateLimit)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n  format: json\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	t.Setenv("PODREG_STORE_DSN", "file:env.db")
	t.Setenv("PODREG_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "file:env.db", cfg.Store.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Log:    LogConfig{Level: "info", Format: "console"},
			Server: ServerConfig{Port: 4040},
			Store:  StoreConfig{Driver: "sqlite3", DSN: "x.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"sql without dsn", func(c *Config) { c.Store.DSN = "" }, true},
		{"redis without dsn", func(c *Config) { c.Store.Driver = "redis"; c.Store.DSN = "" }, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"rate limit", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Requests: 5, Window: time.Second, Backend: "memory"} }, false},
		{"rate limit without window", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Requests: 5, Backend: "memory"} }, true},
		{"rate limit bad backend", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Requests: 5, Window: time.Second, Backend: "disk"} }, true},
		{"rate limit disabled ignores rest", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Backend: "disk"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
