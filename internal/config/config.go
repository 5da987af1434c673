package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main walet configuration
type Config struct {
	// Session directory settings
	Session SessionConfig `json:"session" mapstructure:"session"`

	// Record store backend
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Directory watcher
	Watcher WatcherConfig `json:"watcher" mapstructure:"watcher"`

	// Maintenance sweeps
	Sweep SweepConfig `json:"sweep" mapstructure:"sweep"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// SessionConfig locates the auth session on disk
type SessionConfig struct {
	Dir  string `json:"dir" mapstructure:"dir"`
	Name string `json:"name" mapstructure:"name"` // bundle base name before sanitization
}

// StoreConfig selects the record store backend
type StoreConfig struct {
	Backend    string `json:"backend" mapstructure:"backend"` // files, sqlite
	SQLitePath string `json:"sqlite_path" mapstructure:"sqlite_path"`
}

// WatcherConfig holds directory watcher settings
type WatcherConfig struct {
	Enabled    bool  `json:"enabled" mapstructure:"enabled"`
	DebounceMs int64 `json:"debounce_ms" mapstructure:"debounce_ms"`
}

// SweepConfig holds maintenance sweep settings
type SweepConfig struct {
	Schedule    string `json:"schedule" mapstructure:"schedule"` // cron expression
	MaxAgeHours int    `json:"max_age_hours" mapstructure:"max_age_hours"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// Store backends.
const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			Name: "auth",
		},
		Store: StoreConfig{
			Backend: BackendFiles,
		},
		Watcher: WatcherConfig{
			Enabled:    false,
			DebounceMs: 500,
		},
		Sweep: SweepConfig{
			Schedule:    "0 * * * *",
			MaxAgeHours: 1,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   50,
			MaxAge:    14,
			Compress:  true,
			Redaction: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		DataDir: "",
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Backend != BackendFiles && c.Store.Backend != BackendSQLite {
		return fmt.Errorf("invalid store backend: %s (must be: %s, %s)", c.Store.Backend, BackendFiles, BackendSQLite)
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("store sqlite_path is required for the %s backend", BackendSQLite)
	}

	if c.Watcher.DebounceMs < 0 {
		return fmt.Errorf("watcher debounce_ms must be >= 0")
	}
	if c.Sweep.MaxAgeHours < 0 {
		return fmt.Errorf("sweep max_age_hours must be >= 0")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics addr is required when metrics are enabled")
	}

	return nil
}
