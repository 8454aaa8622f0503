package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/barcode-server/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log      config.Log
		HTTP     config.HTTP
		Barcode  config.Barcode
		Postgres config.Postgres
	}

	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "localhost")
		t.Setenv("POSTGRES_USER", "barcode")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB", "barcode")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, 100, cfg.Barcode.MaxBatchSize)
		assert.Equal(t, 128, cfg.Barcode.CacheSize)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.True(t, cfg.HTTP.Swagger)
		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
	})

	t.Run("Should override from env", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_USER", "barcode")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB", "barcode")
		t.Setenv("BARCODE_MAX_BATCH_SIZE", "25")
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, 25, cfg.Barcode.MaxBatchSize)
		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	})

	t.Run("Should fail on missing required postgres settings", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "")
		require.NoError(t, os.Unsetenv("POSTGRES_HOST"))

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should fail on unknown log format", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_USER", "barcode")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB", "barcode")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}
