package core

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonLabelChars = regexp.MustCompile(`[^a-z0-9 ]+`)

// SanitizeLabel reduces a field label to lowercase ASCII letters, digits
// and single spaces. Diacritics are folded ("Métrica" -> "metrica") and
// underscores count as spaces.
func SanitizeLabel(label string) string {
	s := strings.TrimSpace(label)
	s = stripMarks(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = nonLabelChars.ReplaceAllString(s, "")
	return whitespaceRun.ReplaceAllString(s, " ")
}

// stripMarks removes combining marks after canonical decomposition.
// The transformer chain is stateful, so one is built per call.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Canonicalize maps label to its canonical field name using the default
// dictionary. See Dictionary.Canonicalize.
func Canonicalize(label string) string {
	return DefaultDictionary().Canonicalize(label)
}
