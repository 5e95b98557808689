package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks, so "você" becomes "voce".
// Input that cannot be transformed is returned unchanged.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// Normalize is the single form every question, fragment and cue is compared in.
func Normalize(s string) string {
	return StripDiacritics(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeAll normalizes every phrase and drops the ones that end up empty.
func NormalizeAll(phrases ...string) []string {
	result := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if n := Normalize(phrase); n != "" {
			result = append(result, n)
		}
	}
	return result
}

// ContainsAny reports whether s contains at least one of the phrases.
func ContainsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}
