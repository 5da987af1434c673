package logger

import (
	"io"
	"regexp"
)

// Redactor strips key material and secrets from log lines before they reach
// any writer.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a new redactor with default patterns
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// Tagged binary payloads ({"type":"Buffer","data":"..."})
			regexp.MustCompile(`"data"\s*:\s*"[A-Za-z0-9+/]{24,}={0,2}"`),

			// Credential bundle secrets
			regexp.MustCompile(`"advSecretKey"\s*:\s*"[^"]*"`),
			regexp.MustCompile(`"pairingCode"\s*:\s*"[^"]*"`),

			// Bare base64 runs long enough to be 32-byte keys
			regexp.MustCompile(`[A-Za-z0-9+/]{43,}={0,2}`),

			// Bearer tokens
			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`),

			// Passwords and generic secrets
			regexp.MustCompile(`password["\s:=]+[^\s"]+`),
			regexp.MustCompile(`secret["\s:=]+[^\s"]+`),
		},
	}
}

// AddPattern adds a custom redaction pattern
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, re)
	return nil
}

// Redact redacts sensitive information from a string
func (r *Redactor) Redact(s string) string {
	result := s
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// Wrap wraps an io.Writer to redact sensitive information
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

// redactingWriter is an io.Writer that redacts sensitive information
type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

// Write reports len(p) on success. Redaction changes the byte count, and
// reporting the shorter count would read as a failed write upstream.
func (w *redactingWriter) Write(p []byte) (n int, err error) {
	redacted := w.redactor.Redact(string(p))
	if _, err := w.writer.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	return len(p), nil
}
