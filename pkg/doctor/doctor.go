// Package doctor inspects a session directory and reports integrity problems
// without modifying anything.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// Finding severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// recordCategories lists the prefixes the store writes, longest first so
// "sender-key-memory" wins over "sender-key".
var recordCategories = []string{
	"app-state-sync-version",
	"app-state-sync-key",
	"sender-key-memory",
	"sender-key",
	"pre-key",
	"session",
}

// Finding is one problem discovered during a check.
type Finding struct {
	Severity string `json:"severity"`
	File     string `json:"file"`
	Message  string `json:"message"`
}

// Report is the outcome of checking one session directory.
type Report struct {
	Dir            string    `json:"dir"`
	CredsFile      string    `json:"credsFile"`
	CredsPresent   bool      `json:"credsPresent"`
	RecordsScanned int       `json:"recordsScanned"`
	Findings       []Finding `json:"findings,omitempty"`
}

// Healthy reports whether the check found no error-severity findings.
func (r *Report) Healthy() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Checker validates credential bundles and scans session directories
type Checker struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewChecker creates a new session directory checker
func NewChecker(logger zerolog.Logger) *Checker {
	schemaLoader := gojsonschema.NewStringLoader(CredsSchema)
	return &Checker{
		logger:       logger.With().Str("component", "doctor").Logger(),
		schemaLoader: schemaLoader,
	}
}

// CheckDir scans the session directory at dir, validating the credential
// bundle named by credsFile and every record file.
func (c *Checker) CheckDir(dir, credsFile string) (*Report, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat session directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("session path is not a directory: %s", dir)
	}

	report := &Report{Dir: dir, CredsFile: credsFile}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() {
			report.Findings = append(report.Findings, Finding{
				Severity: SeverityWarning,
				File:     name,
				Message:  "unexpected directory inside session directory",
			})
			continue
		}

		switch {
		case name == credsFile:
			report.CredsPresent = true
			report.Findings = append(report.Findings, c.checkCreds(dir, name)...)
		case strings.HasSuffix(name, ".tmp"):
			report.Findings = append(report.Findings, Finding{
				Severity: SeverityWarning,
				File:     name,
				Message:  "stale temp file from an interrupted write",
			})
		case strings.HasSuffix(name, ".json"):
			report.RecordsScanned++
			report.Findings = append(report.Findings, c.checkRecord(dir, name)...)
		default:
			report.Findings = append(report.Findings, Finding{
				Severity: SeverityWarning,
				File:     name,
				Message:  "file does not belong to the session store",
			})
		}
	}

	if !report.CredsPresent {
		report.Findings = append(report.Findings, Finding{
			Severity: SeverityWarning,
			File:     credsFile,
			Message:  "credential bundle not found (session never saved)",
		})
	}

	c.logger.Debug().
		Str("dir", dir).
		Int("records", report.RecordsScanned).
		Int("findings", len(report.Findings)).
		Msg("Session directory checked")

	return report, nil
}

// checkCreds validates the credential bundle file against the JSON schema.
func (c *Checker) checkCreds(dir, name string) []Finding {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return []Finding{{
			Severity: SeverityError,
			File:     name,
			Message:  fmt.Sprintf("unreadable credential bundle: %v", err),
		}}
	}
	if !json.Valid(data) {
		return []Finding{{
			Severity: SeverityError,
			File:     name,
			Message:  "credential bundle is not valid JSON",
		}}
	}

	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(c.schemaLoader, documentLoader)
	if err != nil {
		return []Finding{{
			Severity: SeverityError,
			File:     name,
			Message:  fmt.Sprintf("schema validation error: %v", err),
		}}
	}

	var findings []Finding
	for _, schemaErr := range result.Errors() {
		findings = append(findings, Finding{
			Severity: SeverityError,
			File:     name,
			Message:  schemaErr.String(),
		})
	}
	return findings
}

// checkRecord verifies one keyed record file: its name must be one the store
// could have written, and its content must parse.
func (c *Checker) checkRecord(dir, name string) []Finding {
	var findings []Finding

	if strings.Contains(name, ":") {
		findings = append(findings, Finding{
			Severity: SeverityError,
			File:     name,
			Message:  "name contains characters the store never writes",
		})
	}
	if !hasKnownCategory(name) {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			File:     name,
			Message:  "record name does not match any known category",
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		findings = append(findings, Finding{
			Severity: SeverityError,
			File:     name,
			Message:  fmt.Sprintf("unreadable record: %v", err),
		})
		return findings
	}
	if !json.Valid(data) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			File:     name,
			Message:  "record is not valid JSON",
		})
	}
	return findings
}

// hasKnownCategory reports whether name starts with a known category prefix.
func hasKnownCategory(name string) bool {
	for _, category := range recordCategories {
		if strings.HasPrefix(name, category+"-") {
			return true
		}
	}
	return false
}
