package config

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "jwt", cfg.Auth.CookieName)
	assert.True(t, cfg.Auth.SetCookie)
	assert.True(t, cfg.Auth.AllowRegistration)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Store.DBQueryTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, FormatText, cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("AUTH_COOKIE_NAME", "access")
	t.Setenv("AUTH_SET_COOKIE", "false")
	t.Setenv("ALLOW_REGISTRATION", "0")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "access", cfg.Auth.CookieName)
	assert.False(t, cfg.Auth.SetCookie)
	assert.False(t, cfg.Auth.AllowRegistration)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, FormatJSON, cfg.Log.Format)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.True(t, errors.Is(err, ErrMissingSecret))
}

func TestLoad_SubSecondTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_TTL", "500ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token ttl")
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("TOKEN_TTL", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Auth: AuthConfig{
			JWTSecret:  "secret",
			TokenTTL:   time.Hour,
			BcryptCost: 10,
			CookieName: "jwt",
		},
		Store: StoreConfig{
			Backend:        BackendPostgres,
			DatabaseURL:    "postgres://localhost/db",
			DBQueryTimeout: time.Second,
		},
		Log: LogConfig{Format: FormatText},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: true},
		{name: "sub-second ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 500 * time.Millisecond }, wantErr: true},
		{name: "one second ttl", mutate: func(c *Config) { c.Auth.TokenTTL = time.Second }},
		{name: "cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 3 }, wantErr: true},
		{name: "cost too high", mutate: func(c *Config) { c.Auth.BcryptCost = 32 }, wantErr: true},
		{name: "min cost", mutate: func(c *Config) { c.Auth.BcryptCost = 4 }},
		{name: "empty cookie name", mutate: func(c *Config) { c.Auth.CookieName = "" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "sqlite" }, wantErr: true},
		{name: "postgres without url", mutate: func(c *Config) { c.Store.DatabaseURL = "" }, wantErr: true},
		{
			name: "redis without url",
			mutate: func(c *Config) {
				c.Store.Backend = BackendRedis
				c.Store.RedisURL = ""
			},
			wantErr: true,
		},
		{
			name: "redis with url",
			mutate: func(c *Config) {
				c.Store.Backend = BackendRedis
				c.Store.RedisURL = "redis://localhost:6379"
			},
		},
		{name: "zero query timeout", mutate: func(c *Config) { c.Store.DBQueryTimeout = 0 }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input), input)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_TRUE", "yes")
	t.Setenv("FLAG_FALSE", "off")

	assert.True(t, getEnvBool("FLAG_TRUE", false))
	assert.False(t, getEnvBool("FLAG_FALSE", true))
	assert.True(t, getEnvBool("FLAG_UNSET", true))
}

func TestNewLogger(t *testing.T) {
	logger := LogConfig{Level: slog.LevelWarn, Format: FormatJSON}.NewLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
