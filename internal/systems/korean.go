package systems

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jusunglee/romanization/internal/prep"
	"github.com/jusunglee/romanization/internal/readings"
	"github.com/jusunglee/romanization/internal/tables"
)

const (
	hangulBase = 0xAC00
	hangulEnd  = 0xD7A3
	jongN      = 28
	jungN      = 21
)

// Revised Romanization of Korean
var (
	choseong = []string{
		"g", "kk", "n", "d", "tt", "r", "m", "b", "pp",
		"s", "ss", "", "j", "jj", "ch", "k", "t", "p", "h",
	}
	jungseong = []string{
		"a", "ae", "ya", "yae", "eo", "e", "yeo", "ye", "o",
		"wa", "wae", "oe", "yo", "u", "wo", "we", "wi", "yu",
		"eu", "ui", "i",
	}
	jongseong = []string{
		"", "g", "kk", "gs", "n", "nj", "nh", "d", "l", "lg",
		"lm", "lb", "ls", "lt", "lp", "lh", "m", "b", "bs",
		"s", "ss", "ng", "j", "ch", "k", "t", "p", "h",
	}
)

// RevisedRomanization spells precomposed Hangul syllables letter by letter.
// Jamo and every other character pass through untouched.
type RevisedRomanization struct{}

func NewRevisedRomanization() *RevisedRomanization {
	return &RevisedRomanization{}
}

func (*RevisedRomanization) Kind() Kind {
	return KindRevisedRomanization
}

func (*RevisedRomanization) Process(text string) string {
	text = prep.LanguageWide(text)
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r < hangulBase || r > hangulEnd {
			out = append(out, string(r)...)
			continue
		}
		code := int(r) - hangulBase
		jong := code % jongN
		jung := (code / jongN) % jungN
		cho := code / (jongN * jungN)
		out = append(out, choseong[cho]...)
		out = append(out, jungseong[jung]...)
		out = append(out, jongseong[jong]...)
	}
	return string(out)
}

// ReadingHangeul is the only reading type of HanjaReadings.
const ReadingHangeul readings.Type = 1

const hanjaHangeulTable = "HanjaHangeul"

// HanjaReadings converts Hanja to their Hangeul readings, and through a
// Hangul system to Latin script.
type HanjaReadings struct {
	resolver *readings.Resolver
	hangul   System
}

// NewHanjaReadings loads the Hanja table from p. The Hangul produced by
// Process is romanized with hangul, or Revised Romanization when nil.
func NewHanjaReadings(ctx context.Context, p tables.Provider, hangul System) (*HanjaReadings, error) {
	m, err := tables.LoadCharacterMap(ctx, p, hanjaHangeulTable, tables.Identity, hangeulSyllables)
	if err != nil {
		return nil, fmt.Errorf("hanja readings: %w", err)
	}
	if hangul == nil {
		hangul = NewRevisedRomanization()
	}
	return &HanjaReadings{
		resolver: readings.NewResolver(ReadingHangeul, readings.Source{Type: ReadingHangeul, Lookup: readings.Map(m)}),
		hangul:   hangul,
	}, nil
}

// Each reading in the table is a single syllable; anything after the first
// character of a reading is ignored.
func hangeulSyllables(value string) ([]string, error) {
	fields, err := tables.SplitSpaces(value)
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		fields[i] = string(r)
	}
	return fields, nil
}

func (*HanjaReadings) Kind() Kind {
	return KindHanjaReadings
}

// ProcessWithReadings lists every Hangeul reading of each character.
// Compatibility ideographs are kept apart from their unified forms since
// they mark alternate readings.
func (h *HanjaReadings) ProcessWithReadings(text string) readings.String {
	return h.resolver.Resolve(text)
}

// ProcessToHangeul replaces each Hanja with its first Hangeul reading.
func (h *HanjaReadings) ProcessToHangeul(text string) string {
	return h.ProcessWithReadings(text).First()
}

// ProcessWith converts Hanja to Hangul and romanizes the result with system.
func (h *HanjaReadings) ProcessWith(text string, system System) string {
	return system.Process(h.ProcessToHangeul(text))
}

// Process converts Hanja to Hangul and romanizes it with the system given at
// construction.
func (h *HanjaReadings) Process(text string) string {
	return h.ProcessWith(text, h.hangul)
}
