package candidate

import (
	"regexp"
	"strings"

	"github.com/kapu/name-bender-go/internal/util"
)

var (
	namingPattern     = regexp.MustCompile(`(?i)\bcall(?:ed)?\s+['"]?(.+?)['"]?$`)
	quotedPattern     = regexp.MustCompile(`['"]([^'"]+)['"]`)
	trailingTailRegex = regexp.MustCompile(`(?i)\s+or\s+something(?:\s+like\s+that)?\s*$`)
)

const quoteChars = `'"`

// ExtractPrimary picks a deterministic candidate out of the prompt before any
// generation call returns. The result is not normalized.
//
//   - "... call it 'X' (or something like that)" yields X.
//   - A one or two word prompt is used verbatim.
//   - Anything else yields nothing.
func ExtractPrimary(prompt string) (string, bool) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", false
	}

	if match := namingPattern.FindStringSubmatch(trimmed); match != nil {
		name := trailingTailRegex.ReplaceAllString(strings.TrimSpace(match[1]), "")
		if quoted := quotedPattern.FindStringSubmatch(name); quoted != nil {
			name = quoted[1]
		}
		name = strings.Trim(strings.TrimSpace(name), quoteChars)
		name = strings.TrimSpace(name)
		if name != "" {
			return name, true
		}
	}

	words := strings.Fields(trimmed)
	if len(words) > 0 && len(words) <= 2 {
		return trimmed, true
	}

	return "", false
}

// PrimaryName is ExtractPrimary followed by normalization. An extraction
// that normalizes to nothing counts as no primary.
func PrimaryName(prompt string) (string, bool) {
	raw, ok := ExtractPrimary(prompt)
	if !ok {
		return "", false
	}
	name := util.NormalizeName(raw)
	return name, name != ""
}
