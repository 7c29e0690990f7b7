package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and removes combining marks
// so "Björk" and "Bjork" collate together.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldKey normalizes a display title into a collation key: diacritics
// stripped, case folded, interior whitespace collapsed.
func FoldKey(title string) string {
	stripped, _, err := transform.String(diacriticStripper, title)
	if err != nil {
		stripped = title
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// ContainsFold reports whether haystack contains needle under FoldKey
// normalization. An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(FoldKey(haystack), FoldKey(needle))
}

// HasParenthetical reports whether a title carries a parenthetical or
// bracketed qualifier such as "(Live)" or "[Remastered]".
func HasParenthetical(title string) bool {
	return strings.ContainsAny(title, "([")
}
