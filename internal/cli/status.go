package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/harun/walet/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watcher status",
	Long:  `Show whether a session watcher is currently running.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pidFile := watchPIDFilePath(cfg)

	if !isRunning(pidFile) {
		cmd.Println("Watcher: not running")
		return nil
	}

	pid, err := readPID(pidFile)
	if err != nil {
		return err
	}

	// PID file modification time doubles as the watcher start time
	fileInfo, err := os.Stat(pidFile)
	if err == nil {
		uptime := time.Since(fileInfo.ModTime())
		cmd.Printf("Watcher: running\n")
		cmd.Printf("PID: %d\n", pid)
		cmd.Printf("Uptime: %s\n", formatDuration(uptime))
	} else {
		cmd.Printf("Watcher: running\n")
		cmd.Printf("PID: %d\n", pid)
	}

	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
