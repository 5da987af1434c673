package authstate

import (
	"regexp"
	"strings"
)

const (
	// DefaultBaseName names the credential bundle when no session name is given.
	DefaultBaseName = "auth"

	maxBaseNameLen = 8
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	invalidBaseChar = regexp.MustCompile(`[^A-Za-z0-9_]`)
	fileTokenRepl   = strings.NewReplacer("/", "__", ":", "-")
)

// SanitizeBaseName derives the credential bundle base name from an optional
// session name. The result is at most 8 characters drawn from [A-Za-z0-9_];
// empty input or an empty result falls back to "auth".
func SanitizeBaseName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultBaseName
	}

	collapsed := whitespaceRun.ReplaceAllString(trimmed, "_")
	cleaned := invalidBaseChar.ReplaceAllString(collapsed, "")
	if len(cleaned) > maxBaseNameLen {
		cleaned = cleaned[:maxBaseNameLen]
	}
	if cleaned == "" {
		return DefaultBaseName
	}
	return cleaned
}

// SanitizeFileToken makes a single path segment safe for the filesystem by
// replacing every "/" with "__" and every ":" with "-".
func SanitizeFileToken(token string) string {
	return fileTokenRepl.Replace(token)
}
