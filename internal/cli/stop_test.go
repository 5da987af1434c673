package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopCommand(t *testing.T) {
	t.Run("command exists", func(t *testing.T) {
		cmd := GetRootCmd()
		commands := cmd.Commands()

		found := false
		for _, c := range commands {
			if c.Name() == "stop" {
				found = true
				break
			}
		}
		assert.True(t, found, "stop command should exist")
	})

	t.Run("errors when no watcher running", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := writeSessionConfig(t, tmpDir)

		_, err := execWalet(t, "stop", "--config", cfgPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no watcher is running")
	})
}
