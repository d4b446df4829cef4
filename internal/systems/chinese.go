package systems

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/romanization/internal/readings"
	"github.com/jusunglee/romanization/internal/tables"
)

// Reading types of HanyuPinyin, highest priority first.
const (
	// Standard Hanyu Pinyin.
	ReadingHanyuPinyin readings.Type = 1 << iota
	// Pinyin as listed in the Xiandai Hanyu Pinlu Cidian.
	ReadingHanyuPinlu
	// Pinyin as listed in the Xiandai Hanyu Cidian.
	ReadingXHC
	// The go-pinyin dictionary, used for characters the tables miss.
	ReadingPinyinDict

	DefaultPinyinReadings = ReadingHanyuPinyin | ReadingHanyuPinlu | ReadingXHC | ReadingPinyinDict
)

var pinyinTables = []struct {
	name string
	typ  readings.Type
}{
	{"HanziHanyuPinyin", ReadingHanyuPinyin},
	{"HanziHanyuPinlu", ReadingHanyuPinlu},
	{"HanziXHC", ReadingXHC},
}

// HanyuPinyin romanizes Chinese characters to Hanyu Pinyin with tone marks.
type HanyuPinyin struct {
	resolver *readings.Resolver
}

// NewHanyuPinyin loads the tables for the requested reading types from p.
// A zero requested means DefaultPinyinReadings.
func NewHanyuPinyin(ctx context.Context, p tables.Provider, requested readings.Type) (*HanyuPinyin, error) {
	if requested == 0 {
		requested = DefaultPinyinReadings
	}
	if extra := requested &^ DefaultPinyinReadings; extra != 0 {
		return nil, fmt.Errorf("hanyu pinyin: unsupported reading types %b", extra)
	}

	maps := make([]map[string][]string, len(pinyinTables))
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range pinyinTables {
		if !requested.Has(t.typ) {
			continue
		}
		g.Go(func() error {
			m, err := tables.LoadCharacterMap(ctx, p, t.name, tables.Identity, tables.SplitSpaces)
			if err != nil {
				return err
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("hanyu pinyin: %w", err)
	}

	sources := make([]readings.Source, 0, len(pinyinTables)+1)
	for i, t := range pinyinTables {
		if maps[i] != nil {
			sources = append(sources, readings.Source{Type: t.typ, Lookup: readings.Map(maps[i])})
		}
	}
	sources = append(sources, readings.Source{Type: ReadingPinyinDict, Lookup: pinyinDict()})

	return &HanyuPinyin{resolver: readings.NewResolver(requested, sources...)}, nil
}

// pinyinDict looks single Han characters up in the go-pinyin dictionary,
// returning every heteronym.
func pinyinDict() readings.Lookup {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	args.Heteronym = true
	return readings.LookupFunc(func(character string) ([]string, bool) {
		r, size := utf8.DecodeRuneInString(character)
		if size != len(character) || !unicode.Is(unicode.Han, r) {
			return nil, false
		}
		py := pinyin.SinglePinyin(r, args)
		return py, len(py) > 0
	})
}

func (*HanyuPinyin) Kind() Kind {
	return KindHanyuPinyin
}

func (h *HanyuPinyin) Requested() readings.Type {
	return h.resolver.Requested()
}

// ProcessWithReadings lists every reading of each character from the
// requested sources. The text is resolved as given, one character per unit.
func (h *HanyuPinyin) ProcessWithReadings(text string) readings.String {
	return h.resolver.Resolve(text)
}

// Process uses the first reading of each character: standard pinyin when
// known, then the frequency dictionary, then the Xiandai Hanyu Cidian.
func (h *HanyuPinyin) Process(text string) string {
	return h.ProcessWithReadings(text).First()
}
