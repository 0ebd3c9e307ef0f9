package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/everafterhq/everafter/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "weddings.test", cfg.Server.BaseDomain)
	require.Equal(t, []string{"https://dashboard.weddings.test"}, cfg.Server.AllowedOrigins)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 3*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 45*time.Minute, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Auth.OIDC.Enabled)
	require.Equal(t, "everafter-web", cfg.Auth.OIDC.ClientID)
	require.False(t, cfg.Auth.MFA.Enabled)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, 10, cfg.RateLimit.MaxRequests)
	require.Equal(t, 30*time.Second, cfg.RateLimit.Window)

	require.False(t, cfg.Dispatch.Enabled)
	require.Equal(t, "@every 5m", cfg.Dispatch.Schedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "everafter", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, "@every 1m", cfg.Dispatch.Schedule)
}

func TestDatabaseOptions(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "postgres",
		Postgres: DBAuthConfig{
			Host:     "db",
			Port:     5432,
			Database: "weddings",
			Username: "svc",
			Password: "pw",
		},
	}

	opts := cfg.DatabaseOptions()
	require.Equal(t, "postgres", opts.Driver)
	require.Equal(t, "db", opts.Host)
	require.Equal(t, "weddings", opts.Name)
	require.Equal(t, "svc", opts.User)
}

func TestJWTServiceConfigFallback(t *testing.T) {
	var cfg AuthConfig
	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)
}

func TestApplyRuntimeDefaults(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.jwt.secret"])
	require.NotEmpty(t, cfg.Auth.JWT.Secret)

	// Existing secrets are left alone.
	again, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, again)
}
