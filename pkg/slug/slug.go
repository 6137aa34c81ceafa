package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen bounds a generated slug. Longer names are cut at a word boundary.
const MaxLen = 48

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that carry no combining mark and so survive NFD folding.
var foldReplacer = strings.NewReplacer(
	"ı", "i", "ø", "o", "ß", "ss", "æ", "ae", "œ", "oe", "ł", "l", "đ", "d",
)

// Generate creates a URL-friendly slug from the given name. Accents are
// folded to ASCII; anything else outside [a-z0-9] becomes a hyphen.
//
// Examples:
//   - "Jeera Goli" → "jeera-goli"
//   - "Crème Brûlée" → "creme-brulee"
//   - "Amla  Candy (Sweet)!" → "amla-candy-sweet"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = foldReplacer.Replace(fold(s))
	s = slugRegexp.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxLen {
		cut := s[:MaxLen]
		if s[MaxLen] != '-' {
			if i := strings.LastIndexByte(cut, '-'); i > 0 {
				cut = cut[:i]
			}
		}
		s = strings.Trim(cut, "-")
	}
	return s
}

// fold strips combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
