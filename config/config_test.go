package config_test

import (
	"testing"
	"time"

	"Fluxo/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Alerts.LookaheadDays)
	assert.Equal(t, 4, cfg.Staging.ApprovalWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CardLabelTTL)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.Contains(t, cfg.Database.DSN, "dbname=fluxo")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALERTS_LOOKAHEAD_DAYS", "14")
	t.Setenv("STAGING_APPROVAL_WORKERS", "0")
	t.Setenv("CARD_LABEL_CACHE_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 14, cfg.Alerts.LookaheadDays)
	assert.Equal(t, 1, cfg.Staging.ApprovalWorkers)
	assert.Equal(t, 30*time.Second, cfg.Cache.CardLabelTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.DSN)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}
