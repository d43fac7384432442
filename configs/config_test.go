package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DBDriver:        "sqlite",
		SQLitePath:      "test.db",
		ServerPort:      8000,
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      12,
		RateLimitMax:    100,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("SERVER_PORT", "")

	cfg := LoadConfig()

	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 8000, cfg.ServerPort)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8000"}, cfg.CORSOrigins)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "1")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("TASK_CACHE_TTL", "90s")

	cfg := LoadConfig()

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.TaskCacheTTL)
}

func TestLoadConfigReportsMalformedValues(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("BCRYPT_COST", "abc")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "x")
	t.Setenv("APP_DEBUG", "maybe")
	t.Setenv("TASK_CACHE_TTL", "1 hour")

	cfg := LoadConfig()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `BCRYPT_COST must be an integer, got "abc"`)
	assert.Contains(t, err.Error(), `ACCESS_TOKEN_EXPIRE_MINUTES must be an integer, got "x"`)
	assert.Contains(t, err.Error(), `APP_DEBUG must be a boolean, got "maybe"`)
	assert.Contains(t, err.Error(), `TASK_CACHE_TTL must be a duration, got "1 hour"`)
}

func TestLoadConfigWellFormedValuesValidate(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("BCRYPT_COST", " 11 ")
	t.Setenv("APP_DEBUG", "false")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "7")
	t.Setenv("SERVER_PORT", "8000")
	t.Setenv("RATE_LIMIT_MAX", "100")
	t.Setenv("TASK_CACHE_TTL", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg := LoadConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 11, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET is required"},
		{name: "short secret", mutate: func(c *Config) { c.JWTSecret = "short" }, wantErr: "at least 32 bytes"},
		{name: "short secret allowed in debug", mutate: func(c *Config) { c.JWTSecret = "short"; c.Debug = true }},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 4 }, wantErr: "BCRYPT_COST"},
		{name: "refresh shorter than access", mutate: func(c *Config) { c.RefreshTokenTTL = time.Minute }, wantErr: "refresh token lifetime"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "unsupported DB_DRIVER"},
		{name: "admin email without password", mutate: func(c *Config) { c.AdminEmail = "root@example.com" }, wantErr: "ADMIN_EMAIL and ADMIN_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
