package util

import (
	"strings"
	"unicode"
)

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// NormalizeName turns raw text into a root label: lower-case, with every
// whitespace run and every "." removed. It is idempotent and never fails.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}

	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if r == '.' || unicode.IsSpace(r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// NormalizeNames normalizes every entry and drops the ones that end up empty.
func NormalizeNames(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		if normalized := NormalizeName(name); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
