package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/harun/walet/internal/config"
	"github.com/harun/walet/pkg/maintenance"
	"github.com/spf13/cobra"
)

var sweepMaxAge time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale temp files from a session directory",
	Long: `Run one maintenance sweep over a session directory. The sweep
removes temp files left behind by interrupted writes once they are older
than the age threshold, and reports record counts per category. Record
files are never touched.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "age threshold for temp files (default from config)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Backend == config.BackendSQLite {
		return fmt.Errorf("sweep cleans the multi-file session layout; the configured store backend is %q", cfg.Store.Backend)
	}

	dir, _ := resolveSession(cfg)

	lg, err := newRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer lg.Close()

	maxAge := sweepMaxAge
	if maxAge == 0 {
		maxAge = time.Duration(cfg.Sweep.MaxAgeHours) * time.Hour
	}

	sweeper, err := maintenance.NewSweeper(maintenance.SweeperOptions{
		Dir:    dir,
		MaxAge: maxAge,
		Logger: lg.Zerolog(),
	})
	if err != nil {
		return err
	}

	result, err := sweeper.Sweep(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Sweep %s completed in %dms\n", result.RunID, result.DurationMs)
	cmd.Printf("  Temp files removed: %d\n", result.RemovedTemp)

	categories := make([]string, 0, len(result.RecordCounts))
	for category := range result.RecordCounts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		cmd.Printf("  %-24s %d\n", category, result.RecordCounts[category])
	}

	return nil
}
