package normalizer

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldKey returns the comparison key for fuzzy matching: ASCII
// transliteration, lowercase, single spaces.
func FoldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(unidecode.Unidecode(s))), " ")
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
// cases.Caser is stateful, so a fresh one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
