package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Address())
	require.Equal(t, "UTC", cfg.Location.String())
	require.Equal(t, 0, cfg.MaxBackfillDays)
	require.Equal(t, defaultKafkaTopic, cfg.KafkaTopic)
	require.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoadRequiresBackingServicesOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("PORT", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("LEDGER_TIMEZONE", "America/New_York")
	t.Setenv("CORRECTION_MAX_BACKFILL_DAYS", "365")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Address())
	require.Equal(t, 3*time.Second, cfg.ShutdownPeriod)
	require.Equal(t, time.Minute, cfg.IdempotencyTTL)
	require.Equal(t, "America/New_York", cfg.Location.String())
	require.Equal(t, 365, cfg.MaxBackfillDays)
}

func TestLoadRejectsNegativeBackfill(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORRECTION_MAX_BACKFILL_DAYS", "-1")

	_, err := Load()
	require.Error(t, err)
}
