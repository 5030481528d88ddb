package parse

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeLines splits raw extracted text into trimmed, non-empty lines with
// non-breaking spaces converted to regular spaces. Empty input yields an
// empty slice.
func NormalizeLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, " ", " ")
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, reWhitespace.ReplaceAllString(line, " "))
	}
	return lines
}

// CollapseSpaces trims and collapses runs of whitespace to single spaces.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// German umlauts transliterate to their two-letter forms so that "STÜCK"
// folds to "STUECK", matching how suppliers spell units in plain ASCII.
var umlautReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "AE", "Ö", "OE", "Ü", "UE",
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldDiacritics transliterates German umlauts and strips remaining combining
// marks, leaving plain ASCII-ish text for matching.
func FoldDiacritics(s string) string {
	s = umlautReplacer.Replace(s)
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeDescription produces the canonical matching key for free-text
// descriptions: lower-cased, diacritics folded, non-alphanumeric runs
// collapsed to single spaces.
func NormalizeDescription(s string) string {
	s = strings.ToLower(FoldDiacritics(s))
	s = reNonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeSKU produces the canonical matching key for SKU tokens.
func NormalizeSKU(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
