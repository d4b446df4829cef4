// Package prep holds the text preparation applied to every input before it is
// split into characters.
package prep

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	CombiningOverline = '\u0305'

	zeroWidthSpace = '\u200b'
	byteOrderMark  = '\ufeff'
)

var invisibles = runes.Remove(runes.Predicate(func(r rune) bool {
	return r == zeroWidthSpace || r == byteOrderMark
}))

// LanguageWide composes text to NFC and drops zero-width spaces and byte order
// marks. NFC also folds the Greek question mark and ano teleia into ';' and
// '·'.
func LanguageWide(text string) string {
	if text == "" {
		return text
	}
	out, _, err := transform.String(transform.Chain(invisibles, norm.NFC), text)
	if err != nil {
		return norm.NFC.String(text)
	}
	return out
}

// StripMarks removes every occurrence of the given marks.
func StripMarks(text string, marks ...rune) string {
	if !strings.ContainsFunc(text, func(r rune) bool { return containsRune(marks, r) }) {
		return text
	}
	out, _, err := transform.String(runes.Remove(runes.Predicate(func(r rune) bool {
		return containsRune(marks, r)
	})), text)
	if err != nil {
		return text
	}
	return out
}

func containsRune(set []rune, r rune) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}
