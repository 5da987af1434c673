package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBackend(t *testing.T) {
	v := NewValidator()

	t.Run("valid backends", func(t *testing.T) {
		backends := []string{BackendFiles, BackendSQLite}
		for _, backend := range backends {
			err := v.ValidateBackend(backend)
			assert.NoError(t, err, "backend %s should be valid", backend)
		}
	})

	t.Run("invalid backend", func(t *testing.T) {
		err := v.ValidateBackend("postgres")
		assert.Error(t, err)
	})

	t.Run("empty backend", func(t *testing.T) {
		err := v.ValidateBackend("")
		assert.Error(t, err)
	})
}

func TestValidateSessionName(t *testing.T) {
	v := NewValidator()

	t.Run("plain name", func(t *testing.T) {
		err := v.ValidateSessionName("auth")
		assert.NoError(t, err)
	})

	t.Run("name that needs sanitizing", func(t *testing.T) {
		// The store rewrites separators and spaces, so these stay valid
		err := v.ValidateSessionName("My Phone/main")
		assert.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		err := v.ValidateSessionName("")
		assert.Error(t, err)
	})

	t.Run("whitespace only", func(t *testing.T) {
		err := v.ValidateSessionName("   ")
		assert.Error(t, err)
	})
}

func TestValidateSchedule(t *testing.T) {
	v := NewValidator()

	t.Run("valid schedules", func(t *testing.T) {
		schedules := []string{"0 * * * *", "*/15 * * * *", "30 2 * * 0"}
		for _, schedule := range schedules {
			err := v.ValidateSchedule(schedule)
			assert.NoError(t, err, "schedule %s should be valid", schedule)
		}
	})

	t.Run("empty schedule", func(t *testing.T) {
		err := v.ValidateSchedule("")
		assert.NoError(t, err) // On-demand sweeps only
	})

	t.Run("invalid schedule", func(t *testing.T) {
		err := v.ValidateSchedule("not a schedule")
		assert.Error(t, err)
	})

	t.Run("six fields rejected", func(t *testing.T) {
		err := v.ValidateSchedule("0 0 * * * *")
		assert.Error(t, err)
	})
}

func TestValidateDebounce(t *testing.T) {
	v := NewValidator()

	t.Run("positive", func(t *testing.T) {
		err := v.ValidateDebounce(500)
		assert.NoError(t, err)
	})

	t.Run("zero", func(t *testing.T) {
		err := v.ValidateDebounce(0)
		assert.NoError(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		err := v.ValidateDebounce(-1)
		assert.Error(t, err)
	})
}

func TestValidateMaxAge(t *testing.T) {
	v := NewValidator()

	t.Run("positive", func(t *testing.T) {
		err := v.ValidateMaxAge(24)
		assert.NoError(t, err)
	})

	t.Run("zero", func(t *testing.T) {
		err := v.ValidateMaxAge(0)
		assert.NoError(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		err := v.ValidateMaxAge(-1)
		assert.Error(t, err)
	})
}

func TestValidateMetricsAddr(t *testing.T) {
	v := NewValidator()

	t.Run("valid addrs", func(t *testing.T) {
		addrs := []string{"127.0.0.1:9464", "localhost:8080", ":9464"}
		for _, addr := range addrs {
			err := v.ValidateMetricsAddr(addr)
			assert.NoError(t, err, "addr %s should be valid", addr)
		}
	})

	t.Run("missing port", func(t *testing.T) {
		err := v.ValidateMetricsAddr("127.0.0.1")
		assert.Error(t, err)
	})

	t.Run("empty addr", func(t *testing.T) {
		err := v.ValidateMetricsAddr("")
		assert.Error(t, err)
	})
}

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	t.Run("valid levels", func(t *testing.T) {
		levels := []string{"debug", "info", "warn", "error"}
		for _, level := range levels {
			err := v.ValidateLogLevel(level)
			assert.NoError(t, err, "level %s should be valid", level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := v.ValidateLogLevel("invalid")
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()

		errors := v.ValidateConfig(cfg)
		assert.Empty(t, errors)
	})

	t.Run("multiple errors", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Backend = "invalid"
		cfg.Sweep.Schedule = "bad schedule"
		cfg.Logging.Level = "invalid"

		errors := v.ValidateConfig(cfg)
		assert.NotEmpty(t, errors)
		assert.GreaterOrEqual(t, len(errors), 3)
	})

	t.Run("sqlite backend needs path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Backend = BackendSQLite
		cfg.Store.SQLitePath = ""

		errors := v.ValidateConfig(cfg)
		assert.Len(t, errors, 1)
		assert.Contains(t, errors[0].Error(), "sqlite_path")
	})
}
