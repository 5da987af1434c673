package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harun/walet/internal/config"
	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/internal/tracing"
	"github.com/harun/walet/pkg/authstate"
	"github.com/harun/walet/pkg/maintenance"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a session directory for external changes",
	Long: `Watch a session directory and print record names as they change.
Bursts of writes are coalesced into one batch per debounce interval.
The command runs in the foreground until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Backend == config.BackendSQLite {
		return fmt.Errorf("watch follows the multi-file session layout; the configured store backend is %q", cfg.Store.Backend)
	}

	dir, _ := resolveSession(cfg)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("no session directory at %s (run: walet init)", dir)
	}

	pidFile := watchPIDFilePath(cfg)
	if isRunning(pidFile) {
		return fmt.Errorf("a watcher is already running (PID file: %s)", pidFile)
	}

	lg, err := newRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer lg.Close()

	if err := tracing.InitOpenTelemetry("walet"); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tracing.ShutdownOpenTelemetry(shutdownCtx)
	}()

	watcher, err := authstate.NewDirWatcher(dir, lg.Zerolog(), func(records []string) {
		cmd.Printf("changed: %s\n", strings.Join(records, " "))
	})
	if err != nil {
		return err
	}
	if cfg.Watcher.DebounceMs > 0 {
		watcher.SetDebounce(time.Duration(cfg.Watcher.DebounceMs) * time.Millisecond)
	}

	if err := writePIDFile(pidFile); err != nil {
		watcher.Stop()
		return err
	}
	defer os.Remove(pidFile)

	if cfg.Sweep.Schedule != "" {
		sweeper, err := maintenance.NewSweeper(maintenance.SweeperOptions{
			Dir:      dir,
			MaxAge:   time.Duration(cfg.Sweep.MaxAgeHours) * time.Hour,
			Schedule: cfg.Sweep.Schedule,
			Logger:   lg.Zerolog(),
		})
		if err != nil {
			watcher.Stop()
			return err
		}
		if err := sweeper.Start(); err != nil {
			watcher.Stop()
			return err
		}
		defer sweeper.Stop()
		cmd.Printf("Sweeping on schedule %q\n", cfg.Sweep.Schedule)
	}

	// The watcher is the one long-running walet process, so the metrics
	// endpoint lives here.
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.MetricsHandler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("Metrics endpoint failed")
			}
		}()
		cmd.Printf("Metrics on http://%s/metrics\n", cfg.Metrics.Addr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (press Ctrl+C to stop)\n", dir)
	<-ctx.Done()

	cmd.Println("Stopping watcher...")
	if metricsSrv != nil {
		metricsSrv.Close()
	}
	return watcher.Stop()
}
