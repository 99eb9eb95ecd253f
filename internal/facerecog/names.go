package facerecog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips combining marks (e.g. "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizePersonName normalizes a name for comparison: lowercase, no
// diacritics, dashes treated as spaces.
func NormalizePersonName(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
