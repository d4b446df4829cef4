// Package systems implements the supported romanization and numeral systems
// on top of the readings and numerals engines.
package systems

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jusunglee/romanization/internal/numerals"
	"github.com/jusunglee/romanization/internal/readings"
)

var ErrUnknownKind = errors.New("unknown system")

// Kind identifies one of the supported systems.
type Kind string

const (
	KindHanyuPinyin         Kind = "hanyu-pinyin"
	KindHanjaReadings       Kind = "hanja-readings"
	KindRevisedRomanization Kind = "revised-romanization"
	KindAtticNumerals       Kind = "attic-numerals"
)

// Kinds lists every supported system.
func Kinds() []Kind {
	return []Kind{KindHanyuPinyin, KindHanjaReadings, KindRevisedRomanization, KindAtticNumerals}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// System romanizes text.
type System interface {
	Kind() Kind
	Process(text string) string
}

// ReadingsSystem additionally exposes every reading of every character.
type ReadingsSystem interface {
	System
	ProcessWithReadings(text string) readings.String
}

// NumeralSystem parses numerals, alone or embedded in text.
type NumeralSystem interface {
	System
	Parse(text string) numerals.Value
	ProcessNumeralsInText(text string, format func(numerals.Value) string) string
}

var (
	_ ReadingsSystem = (*HanyuPinyin)(nil)
	_ ReadingsSystem = (*HanjaReadings)(nil)
	_ System         = (*RevisedRomanization)(nil)
	_ NumeralSystem  = (*AtticNumerals)(nil)
)

// ReadingTypeNames maps the reading source names a system accepts to their
// flags.
func ReadingTypeNames(k Kind) map[string]readings.Type {
	switch k {
	case KindHanyuPinyin:
		return map[string]readings.Type{
			"hanyu-pinyin": ReadingHanyuPinyin,
			"hanyu-pinlu":  ReadingHanyuPinlu,
			"xhc":          ReadingXHC,
			"pinyin-dict":  ReadingPinyinDict,
		}
	case KindHanjaReadings:
		return map[string]readings.Type{"hangeul": ReadingHangeul}
	default:
		return nil
	}
}

// ReadingTypeName is the inverse of ReadingTypeNames for a single flag.
func ReadingTypeName(k Kind, t readings.Type) string {
	for name, flag := range ReadingTypeNames(k) {
		if flag == t {
			return name
		}
	}
	return ""
}

// HasNumerals reports whether systems of kind k implement NumeralSystem.
func HasNumerals(k Kind) bool {
	return k == KindAtticNumerals
}

// ParseReadingTypes combines the named sources of a system into one set. No
// names gives 0, which systems treat as their default set.
func ParseReadingTypes(k Kind, names []string) (readings.Type, error) {
	known := ReadingTypeNames(k)
	var t readings.Type
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		flag, ok := known[n]
		if !ok {
			return 0, fmt.Errorf("system %s has no reading type %q", k, n)
		}
		t |= flag
	}
	return t, nil
}

// DetectScript picks the system for text: Hangul wins over Han characters,
// and anything else has no system.
func DetectScript(text string) (Kind, bool) {
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			return KindRevisedRomanization, true
		}
	}
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return KindHanyuPinyin, true
		}
	}
	return "", false
}
