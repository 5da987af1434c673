package cli

import (
	"fmt"

	"github.com/harun/walet/internal/config"
	"github.com/harun/walet/pkg/authstate"
	"github.com/harun/walet/pkg/doctor"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check a session directory for problems",
	Long: `Check a session directory for problems: a malformed or missing
credential bundle, records that are not valid JSON, leftover temp files
from interrupted writes, and files that do not belong to the store.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Backend == config.BackendSQLite {
		return fmt.Errorf("doctor checks the multi-file session layout; the configured store backend is %q", cfg.Store.Backend)
	}

	dir, name := resolveSession(cfg)

	lg, err := newRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer lg.Close()

	credsFile := authstate.SanitizeBaseName(name) + ".json"

	checker := doctor.NewChecker(lg.Zerolog())
	report, err := checker.CheckDir(dir, credsFile)
	if err != nil {
		return err
	}

	cmd.Printf("Session directory: %s\n", report.Dir)
	if report.CredsPresent {
		cmd.Printf("Credential bundle: %s (present)\n", report.CredsFile)
	} else {
		cmd.Printf("Credential bundle: %s (missing)\n", report.CredsFile)
	}
	cmd.Printf("Records scanned:   %d\n", report.RecordsScanned)

	if len(report.Findings) == 0 {
		cmd.Println("\nNo problems found.")
		return nil
	}

	cmd.Println()
	errorCount := 0
	for _, finding := range report.Findings {
		if finding.Severity == doctor.SeverityError {
			errorCount++
		}
		if finding.File != "" {
			cmd.Printf("%-7s %s: %s\n", finding.Severity, finding.File, finding.Message)
		} else {
			cmd.Printf("%-7s %s\n", finding.Severity, finding.Message)
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("found %d problem(s) in %s", errorCount, report.Dir)
	}

	cmd.Printf("\n%d warning(s), no errors.\n", len(report.Findings))
	return nil
}
