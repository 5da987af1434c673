package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a new configuration wizard
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// NewWizardWithIO creates a wizard reading from r and writing prompts to w
func NewWizardWithIO(r io.Reader, w io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(r),
		out:    w,
	}
}

// Run runs the interactive configuration wizard
func (w *Wizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "=== Walet Configuration Wizard ===")
	fmt.Fprintln(w.out)

	cfg := DefaultConfig()
	validator := NewValidator()

	// Session
	fmt.Fprintln(w.out, "Session:")
	fmt.Fprintln(w.out)

	fmt.Fprint(w.out, "Session directory (press Enter for ~/.walet/session): ")
	dir, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.Session.Dir = dir
	}

	for {
		fmt.Fprint(w.out, "Credential bundle name [auth]: ")
		name, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if name == "" {
			break
		}

		if err := validator.ValidateSessionName(name); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.Session.Name = name
		break
	}

	fmt.Fprintln(w.out)

	// Store backend
	fmt.Fprintln(w.out, "Store backend options:")
	fmt.Fprintln(w.out, "  files  - One JSON file per record (default)")
	fmt.Fprintln(w.out, "  sqlite - Single database file")
	for {
		fmt.Fprint(w.out, "Backend [files]: ")
		backend, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if backend == "" {
			break
		}

		if err := validator.ValidateBackend(backend); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.Store.Backend = backend
		break
	}

	if cfg.Store.Backend == BackendSQLite {
		fmt.Fprint(w.out, "SQLite database path (press Enter for ~/.walet/walet.db): ")
		path, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if path != "" {
			cfg.Store.SQLitePath = path
		}
	}

	fmt.Fprintln(w.out)

	// Watcher
	fmt.Fprint(w.out, "Watch the session directory for external changes? (y/n) [n]: ")
	enable, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Watcher.Enabled = strings.ToLower(enable) == "y"

	fmt.Fprintln(w.out)

	// Sweep schedule
	for {
		fmt.Fprint(w.out, "Sweep schedule, five-field cron (press Enter for hourly): ")
		schedule, err := w.readLine()
		if err != nil {
			return nil, err
		}

		if schedule == "" {
			break
		}

		if err := validator.ValidateSchedule(schedule); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}

		cfg.Sweep.Schedule = schedule
		break
	}

	fmt.Fprintln(w.out)

	// Log Level
	fmt.Fprintln(w.out, "Logging:")
	fmt.Fprint(w.out, "Log level (debug/info/warn/error) [info]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, using default (info)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
