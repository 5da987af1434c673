package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateBackend validates a store backend name
func (v *Validator) ValidateBackend(backend string) error {
	validBackends := []string{BackendFiles, BackendSQLite}
	for _, valid := range validBackends {
		if backend == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid store backend: %s (must be one of: %s)", backend, strings.Join(validBackends, ", "))
}

// ValidateSessionName validates the credential bundle base name
func (v *Validator) ValidateSessionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	// Names with path separators or spaces are legal; the store rewrites
	// them before they reach the filesystem.
	return nil
}

// ValidateSchedule validates a five-field cron expression
func (v *Validator) ValidateSchedule(schedule string) error {
	if schedule == "" {
		return nil // Sweeps run on demand only
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return nil
}

// ValidateDebounce validates the watcher debounce interval
func (v *Validator) ValidateDebounce(ms int64) error {
	if ms < 0 {
		return fmt.Errorf("watcher debounce_ms must be >= 0, got %d", ms)
	}
	return nil
}

// ValidateMaxAge validates the sweep age threshold
func (v *Validator) ValidateMaxAge(hours int) error {
	if hours < 0 {
		return fmt.Errorf("sweep max_age_hours must be >= 0, got %d", hours)
	}
	return nil
}

// ValidateMetricsAddr validates a host:port listen address
func (v *Validator) ValidateMetricsAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("metrics addr cannot be empty")
	}

	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid metrics addr %q: %w", addr, err)
	}

	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	// Validate store
	if err := v.ValidateBackend(cfg.Store.Backend); err != nil {
		errors = append(errors, err)
	}
	if cfg.Store.Backend == BackendSQLite && strings.TrimSpace(cfg.Store.SQLitePath) == "" {
		errors = append(errors, fmt.Errorf("store sqlite_path is required for the %s backend", BackendSQLite))
	}

	// Validate session
	if err := v.ValidateSessionName(cfg.Session.Name); err != nil {
		errors = append(errors, err)
	}

	// Validate watcher
	if err := v.ValidateDebounce(cfg.Watcher.DebounceMs); err != nil {
		errors = append(errors, err)
	}

	// Validate sweep
	if err := v.ValidateSchedule(cfg.Sweep.Schedule); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateMaxAge(cfg.Sweep.MaxAgeHours); err != nil {
		errors = append(errors, err)
	}

	// Validate metrics
	if cfg.Metrics.Enabled {
		if err := v.ValidateMetricsAddr(cfg.Metrics.Addr); err != nil {
			errors = append(errors, err)
		}
	}

	// Validate logging
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
