package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/walet/pkg/sqlitestate"
)

func TestRecordsCommand(t *testing.T) {
	t.Run("command exists with subcommands", func(t *testing.T) {
		cmd := GetRootCmd()
		commands := cmd.Commands()

		var records []string
		for _, c := range commands {
			if c.Name() == "records" {
				for _, sub := range c.Commands() {
					records = append(records, sub.Name())
				}
			}
		}
		assert.Contains(t, records, "list")
		assert.Contains(t, records, "show")
		assert.Contains(t, records, "delete")
	})

	t.Run("list empty category", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := writeSessionConfig(t, tmpDir)

		_, err := execWalet(t, "init", "--config", cfgPath)
		require.NoError(t, err)

		output, err := execWalet(t, "records", "list", "pre-key", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "No pre-key records.")
	})

	t.Run("list, show, delete round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := writeSessionConfig(t, tmpDir)

		_, err := execWalet(t, "init", "--config", cfgPath)
		require.NoError(t, err)

		sessDir := filepath.Join(tmpDir, "session")
		body := `{"keyId": 7, "note": "spare"}`
		require.NoError(t, os.WriteFile(filepath.Join(sessDir, "pre-key-7.json"), []byte(body), 0600))

		output, err := execWalet(t, "records", "list", "pre-key", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "- 7")

		output, err = execWalet(t, "records", "show", "pre-key", "7", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, `"keyId"`)
		assert.Contains(t, output, "spare")

		output, err = execWalet(t, "records", "delete", "pre-key", "7", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "Deleted pre-key 7.")

		_, err = os.Stat(filepath.Join(sessDir, "pre-key-7.json"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("show missing record", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := writeSessionConfig(t, tmpDir)

		_, err := execWalet(t, "init", "--config", cfgPath)
		require.NoError(t, err)

		_, err = execWalet(t, "records", "show", "pre-key", "404", "--config", cfgPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record not found")
	})

	t.Run("sqlite backend round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := writeSQLiteConfig(t, tmpDir)

		_, err := execWalet(t, "init", "--config", cfgPath)
		require.NoError(t, err)

		store, err := sqlitestate.Open(filepath.Join(tmpDir, "walet.db"))
		require.NoError(t, err)
		require.NoError(t, store.Set(context.Background(), map[string]map[string]interface{}{
			"pre-key": {"7": map[string]interface{}{"keyId": 7, "note": "spare"}},
		}))
		require.NoError(t, store.Close())

		output, err := execWalet(t, "records", "list", "pre-key", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "- 7")

		output, err = execWalet(t, "records", "show", "pre-key", "7", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "spare")

		output, err = execWalet(t, "records", "delete", "pre-key", "7", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "Deleted pre-key 7.")

		output, err = execWalet(t, "records", "list", "pre-key", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, output, "No pre-key records.")
	})
}
