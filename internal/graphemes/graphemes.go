// Package graphemes splits text into atomic characters without ever cutting
// a multi-unit character in half.
package graphemes

import (
	"strings"
	"unicode/utf8"
)

// Split returns the runes of text as separate strings. Bytes that do not form
// valid UTF-8 are emitted one per unit, so joining the result always gives
// back the exact input.
func Split(text string) []string {
	if text == "" {
		return []string{}
	}
	units := make([]string, 0, utf8.RuneCountInString(text))
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		units = append(units, text[i:i+size])
		i += size
	}
	return units
}

// SplitUTF16 groups UTF-16 code units into characters. A high surrogate
// immediately followed by a low surrogate becomes one two-unit character;
// anything else, including an unpaired high surrogate at the end, is emitted
// on its own.
func SplitUTF16(units []uint16) [][]uint16 {
	out := make([][]uint16, 0, len(units))
	for i := 0; i < len(units); {
		if isHighSurrogate(units[i]) && i+1 < len(units) && isLowSurrogate(units[i+1]) {
			out = append(out, units[i:i+2:i+2])
			i += 2
			continue
		}
		out = append(out, units[i:i+1:i+1])
		i++
	}
	return out
}

func Join(units []string) string {
	return strings.Join(units, "")
}

func JoinUTF16(units [][]uint16) []uint16 {
	n := 0
	for _, u := range units {
		n += len(u)
	}
	out := make([]uint16, 0, n)
	for _, u := range units {
		out = append(out, u...)
	}
	return out
}

func isHighSurrogate(u uint16) bool { return u >= 0xD800 && u <= 0xDBFF }

func isLowSurrogate(u uint16) bool { return u >= 0xDC00 && u <= 0xDFFF }
