package fetch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slug lowercases name, folds accents to their base letters, turns whitespace
// runs into hyphens, and drops everything outside [a-z0-9-].
func Slug(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	slug := strings.ToLower(strings.TrimSpace(folded))
	slug = slugSpaces.ReplaceAllString(slug, "-")
	return slugInvalid.ReplaceAllString(slug, "")
}
