package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "auth", cfg.Session.Name)
	assert.Equal(t, BackendFiles, cfg.Store.Backend)
	assert.False(t, cfg.Watcher.Enabled)
	assert.Equal(t, int64(500), cfg.Watcher.DebounceMs)
	assert.Equal(t, "0 * * * *", cfg.Sweep.Schedule)
	assert.Equal(t, 1, cfg.Sweep.MaxAgeHours)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Logging.MaxSize)
	assert.True(t, cfg.Logging.Redaction)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()

		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("invalid backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Backend = "postgres"

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid store backend")
	})

	t.Run("sqlite backend without path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Backend = BackendSQLite
		cfg.Store.SQLitePath = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite_path")
	})

	t.Run("sqlite backend with path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Backend = BackendSQLite
		cfg.Store.SQLitePath = "/tmp/walet.db"

		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("negative debounce", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Watcher.DebounceMs = -1

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "debounce_ms")
	})

	t.Run("negative sweep age", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Sweep.MaxAgeHours = -1

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_age_hours")
	})

	t.Run("metrics enabled without addr", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = ""

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "metrics addr")
	})
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Dir = "/var/lib/walet/session"

	str := cfg.String()
	assert.NotEmpty(t, str)
	assert.Contains(t, str, "session")
	assert.Contains(t, str, "/var/lib/walet/session")
}
