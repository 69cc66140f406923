package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks decomposes accented characters and removes the combining
// marks, so "résumé" becomes "resume".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate creates a URL-friendly slug from the given title.
// Accented Latin characters are transliterated to their ASCII equivalents.
//
// Examples:
//   - "Résumé Été 2024" → "resume-ete-2024"
//   - "Hello   World!" → "hello-world"
//   - "Product Designer / UX" → "product-designer-ux"
func Generate(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))

	if ascii, _, err := transform.String(stripMarks, slug); err == nil {
		slug = ascii
	}

	// A few letters have no combining-mark decomposition.
	replacer := strings.NewReplacer(
		"ß", "ss", "ø", "o", "æ", "ae", "œ", "oe", "ð", "d", "þ", "th", "ł", "l", "ı", "i",
	)
	slug = replacer.Replace(slug)

	// Replace any non-alphanumeric run with a single hyphen.
	slug = slugRegexp.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
