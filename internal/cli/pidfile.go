package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/harun/walet/internal/config"
)

// watchPIDFilePath returns the PID file the watch command holds while it
// runs. It lives in the data directory, never in the session directory,
// so doctor does not flag it as a foreign file.
func watchPIDFilePath(cfg *config.Config) string {
	if cfg.DataDir == "" {
		return filepath.Join(os.TempDir(), "walet-watch.pid")
	}
	return filepath.Join(cfg.DataDir, "walet-watch.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

func readPID(pidFile string) (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

func isRunning(pidFile string) bool {
	if _, err := os.Stat(pidFile); os.IsNotExist(err) {
		return false
	}

	pid, err := readPID(pidFile)
	if err != nil {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix FindProcess always succeeds; signal 0 probes liveness
	return process.Signal(syscall.Signal(0)) == nil
}
