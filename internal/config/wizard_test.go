package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardRun(t *testing.T) {
	t.Run("scripted answers", func(t *testing.T) {
		// Answers in prompt order: dir, name, backend, sqlite path,
		// watcher, schedule, log level.
		input := strings.Join([]string{
			"/srv/walet/session",
			"primary",
			"sqlite",
			"",
			"y",
			"*/30 * * * *",
			"debug",
		}, "\n") + "\n"

		var out bytes.Buffer
		w := NewWizardWithIO(strings.NewReader(input), &out)

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, "/srv/walet/session", cfg.Session.Dir)
		assert.Equal(t, "primary", cfg.Session.Name)
		assert.Equal(t, BackendSQLite, cfg.Store.Backend)
		assert.True(t, cfg.Watcher.Enabled)
		assert.Equal(t, "*/30 * * * *", cfg.Sweep.Schedule)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Contains(t, out.String(), "Configuration complete!")
	})

	t.Run("defaults on enter", func(t *testing.T) {
		input := strings.Repeat("\n", 6)

		var out bytes.Buffer
		w := NewWizardWithIO(strings.NewReader(input), &out)

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, "", cfg.Session.Dir) // Loader derives it later
		assert.Equal(t, "auth", cfg.Session.Name)
		assert.Equal(t, BackendFiles, cfg.Store.Backend)
		assert.False(t, cfg.Watcher.Enabled)
		assert.Equal(t, "0 * * * *", cfg.Sweep.Schedule)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("invalid backend retries", func(t *testing.T) {
		input := strings.Join([]string{
			"", // dir
			"", // name
			"postgres",
			"files",
			"", // watcher
			"", // schedule
			"", // level
		}, "\n") + "\n"

		var out bytes.Buffer
		w := NewWizardWithIO(strings.NewReader(input), &out)

		cfg, err := w.Run()
		require.NoError(t, err)

		assert.Equal(t, BackendFiles, cfg.Store.Backend)
		assert.Contains(t, out.String(), "invalid store backend")
	})

	t.Run("input ends early", func(t *testing.T) {
		w := NewWizardWithIO(strings.NewReader(""), &bytes.Buffer{})

		_, err := w.Run()
		assert.Error(t, err)
	})
}
