package cli

import (
	"fmt"
	"path/filepath"

	"github.com/harun/walet/internal/config"
	"github.com/harun/walet/internal/logger"
	"github.com/harun/walet/internal/observability"
	"github.com/harun/walet/internal/tracing"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile     string
	logLevel    string
	sessionDir  string
	sessionName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "walet",
	Short: "Walet - Durable WhatsApp Session Store",
	Long: `Walet stores WhatsApp authentication state on disk: a credential
bundle plus one file per signal key record. It keeps concurrent writers
from corrupting the session and ships tooling to inspect, verify, and
maintain session directories.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Every run gets a trace ID so audit entries from one command
		// invocation can be correlated.
		cmd.SetContext(tracing.NewRequestContext(cmd.Context()))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.walet/walet.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default from config)")
	rootCmd.PersistentFlags().StringVar(&sessionDir, "dir", "", "session directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&sessionName, "name", "", "credential bundle name (default from config)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// resolveSession applies the --dir and --name overrides on top of the
// loaded config.
func resolveSession(cfg *config.Config) (dir, name string) {
	dir = cfg.Session.Dir
	if sessionDir != "" {
		dir = sessionDir
	}
	name = cfg.Session.Name
	if sessionName != "" {
		name = sessionName
	}
	return dir, name
}

// newRunLogger builds the process logger for a command run. Command output
// itself goes to stdout; component logs go to the configured log file, and
// the audit trail goes to its own file in the data directory.
func newRunLogger(cfg *config.Config) (*logger.Logger, error) {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	lg, err := logger.New(logger.Config{
		Level:     level,
		File:      cfg.Logging.File,
		Console:   false,
		Redaction: cfg.Logging.Redaction,
		MaxSize:   cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return nil, err
	}

	if cfg.DataDir != "" {
		if err := observability.InitAuditLogger(filepath.Join(cfg.DataDir, "walet-audit.log")); err != nil {
			lg.Close()
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	return lg, nil
}
