package authstate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBaseName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "auth"},
		{"whitespace only", "   \t ", "auth"},
		{"simple", "work", "work"},
		{"trimmed", "  work  ", "work"},
		{"whitespace run to underscore", "my  phone", "my_phone"},
		{"strips specials", "p@r!o#d", "prod"},
		{"truncates to eight", "longsessionname", "longsess"},
		{"specials only", "@#$%", "auth"},
		{"mixed", " A b/C:9 ", "A_bC9"},
		{"keeps underscores", "a_b_c", "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeBaseName(tt.input))
		})
	}
}

func TestSanitizeBaseNameProperties(t *testing.T) {
	inputs := []string{
		"",
		"x",
		"weird !@# name",
		"....",
		"tab\there",
		"日本語",
		strings.Repeat("a", 100),
		"  mixed UP case 77  ",
	}

	for _, input := range inputs {
		got := SanitizeBaseName(input)
		assert.LessOrEqual(t, len(got), 8, "input %q", input)
		assert.Regexp(t, `^[A-Za-z0-9_]+$`, got, "input %q", input)
	}
}

func TestSanitizeFileToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "pre-key-1.json", "pre-key-1.json"},
		{"slash", "a/b", "a__b"},
		{"colon", "device:1", "device-1"},
		{"jid", "session-12345:2@host.json", "session-12345-2@host.json"},
		{"multiple slashes", "a/b/c", "a__b__c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileToken(tt.input))
		})
	}
}
