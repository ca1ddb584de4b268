package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// accents folds the Latin letters that appear in menu names to ASCII.
var accents = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"&", " and ",
)

// Generate creates a URL-friendly slug from a display name.
//
// Examples:
//   - "Main Course" → "main-course"
//   - "Crème Brûlée" → "creme-brulee"
//   - "Rolls & Sashimi" → "rolls-and-sashimi"
func Generate(name string) string {
	s := accents.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
