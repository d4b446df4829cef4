package systems

import (
	"regexp"
	"strings"

	"github.com/jusunglee/romanization/internal/graphemes"
	"github.com/jusunglee/romanization/internal/numerals"
	"github.com/jusunglee/romanization/internal/prep"
)

// Units an Attic numeral can be written in.
const (
	UnitDrachma numerals.Unit = "drachma"
	UnitPlethra numerals.Unit = "plethra"
	UnitTalents numerals.Unit = "talents"
	UnitStaters numerals.Unit = "staters"
	UnitMnas    numerals.Unit = "mnas"
	UnitYears   numerals.Unit = "years"
	UnitWeight  numerals.Unit = "weight"
	UnitTime    numerals.Unit = "time"
)

// Symbols from the Ancient Greek Numbers block (U+10140..U+1018F) plus the
// Greek capitals used as acrophonic numerals.
var atticWeights = []numerals.Weight{
	{Symbol: "\U0001018A", Value: "0"},
	{Symbol: "\U0001017C", Value: "1/6"}, // drachma or obol
	{Symbol: "\U00010140", Value: "1/4"},
	{Symbol: "\U0001018B", Value: "1/4"},
	{Symbol: "\U0001017D", Value: "2/6"}, // drachma or obol
	{Symbol: "\U00010141", Value: "1/2"},
	{Symbol: "\U00010175", Value: "1/2"},
	{Symbol: "\U00010176", Value: "1/2"},
	{Symbol: "\U0001017E", Value: "3/6"}, // drachma or obol
	{Symbol: "\U00010177", Value: "2/3"},
	{Symbol: "\U0001017F", Value: "4/6"}, // drachma or obol
	{Symbol: "\U00010178", Value: "3/4"},
	{Symbol: "\U00010180", Value: "5/6"}, // drachma or obol
	{Symbol: "\u0399", Value: "1"},       // iota
	{Symbol: "\U00010142", Value: "1"},   // drachma
	{Symbol: "\U00010158", Value: "1"},   // plethron
	{Symbol: "\U00010159", Value: "1"},   // Thespian
	{Symbol: "\U0001015A", Value: "1"},   // Hermionian
	{Symbol: "\U0001015B", Value: "2"},   // Epidaurean
	{Symbol: "\U0001015C", Value: "2"},   // Thespian
	{Symbol: "\U0001015D", Value: "2"},   // drachma, Cyrenaic
	{Symbol: "\U0001015E", Value: "2"},   // drachma, Epidaurean
	{Symbol: "\u03A0", Value: "5"},       // pi
	{Symbol: "\U00010148", Value: "5"},   // talents
	{Symbol: "\U0001014F", Value: "5"},   // staters
	{Symbol: "\U0001015F", Value: "5"},   // Troezenian
	{Symbol: "\U00010173", Value: "5"},   // mnas, Delphic
	{Symbol: "\u0394", Value: "10"},      // delta
	{Symbol: "\U00010149", Value: "10"},  // talents
	{Symbol: "\U00010150", Value: "10"},  // staters
	{Symbol: "\U00010157", Value: "10"},  // mnas
	{Symbol: "\U00010160", Value: "10"},  // Troezenian
	{Symbol: "\U00010161", Value: "10"},  // Troezenian
	{Symbol: "\U00010162", Value: "10"},  // Hermionian
	{Symbol: "\U00010163", Value: "10"},  // Messenian
	{Symbol: "\U00010164", Value: "10"},  // Thespian
	{Symbol: "\U00010165", Value: "30"},  // Thespian
	{Symbol: "\U00010144", Value: "50"},
	{Symbol: "\U0001014A", Value: "50"},  // talents
	{Symbol: "\U00010151", Value: "50"},  // staters
	{Symbol: "\U00010166", Value: "50"},  // Troezenian
	{Symbol: "\U00010167", Value: "50"},  // Troezenian
	{Symbol: "\U00010168", Value: "50"},  // Hermionian
	{Symbol: "\U00010169", Value: "50"},  // Thespian
	{Symbol: "\U00010174", Value: "50"},  // mnas, Stratian
	{Symbol: "\u0397", Value: "100"},     // eta
	{Symbol: "\U0001014B", Value: "100"}, // talents
	{Symbol: "\U00010152", Value: "100"}, // staters
	{Symbol: "\U0001016A", Value: "100"}, // Thespian
	{Symbol: "\U0001016B", Value: "300"}, // Thespian
	{Symbol: "\U00010145", Value: "500"},
	{Symbol: "\U0001014C", Value: "500"},  // talents
	{Symbol: "\U00010153", Value: "500"},  // staters
	{Symbol: "\U0001016C", Value: "500"},  // Epidaurean
	{Symbol: "\U0001016D", Value: "500"},  // Troezenian
	{Symbol: "\U0001016E", Value: "500"},  // Thespian
	{Symbol: "\U0001016F", Value: "500"},  // Carystian
	{Symbol: "\U00010170", Value: "500"},  // Naxian
	{Symbol: "\u03A7", Value: "1000"},     // chi
	{Symbol: "\U0001014D", Value: "1000"}, // talents
	{Symbol: "\U00010154", Value: "1000"}, // staters
	{Symbol: "\U00010171", Value: "1000"}, // Thespian
	{Symbol: "\U00010146", Value: "5000"},
	{Symbol: "\U0001014E", Value: "5000"},  // talents
	{Symbol: "\U00010172", Value: "5000"},  // Thespian
	{Symbol: "\u039C", Value: "10000"},     // mu
	{Symbol: "\U00010155", Value: "10000"}, // staters
	{Symbol: "\U00010147", Value: "50000"},
	{Symbol: "\U00010156", Value: "50000"}, // staters
}

// Checked in this order; the first set sharing a symbol with the numeral
// decides its unit.
var atticUnits = []numerals.UnitSet{
	{Unit: UnitDrachma, Symbols: []string{"\U0001017B", "\U0001017C", "\U00010142", "\U0001015D", "\U0001015E", "\U0001017D", "\U0001017E", "\U0001017F", "\U00010180"}},
	{Unit: UnitPlethra, Symbols: []string{"\U00010158"}},
	{Unit: UnitTalents, Symbols: []string{"\U0001017A", "\U00010148", "\U00010149", "\U0001014A", "\U0001014B", "\U0001014C", "\U0001014D", "\U0001014E"}},
	{Unit: UnitStaters, Symbols: []string{"\U0001014F", "\U00010150", "\U00010151", "\U00010152", "\U00010153", "\U00010154", "\U00010155", "\U00010156"}},
	{Unit: UnitMnas, Symbols: []string{"\U00010173", "\U00010157", "\U00010174"}},
	{Unit: UnitYears, Symbols: []string{"\U00010179", "\U0001018C"}},
	{Unit: UnitWeight, Symbols: []string{"\U0001018E"}},
	{Unit: UnitTime, Symbols: []string{"\U0001018D"}},
}

// AtticNumerals parses the acrophonic numerals used in Attica before the
// alphabetic system replaced them.
//
// Numerals are found in running text by the combining overline (U+0305)
// written over each symbol. Nothing else tells an Attic numeral apart from
// ordinary Greek capitals, so any overlined run of numeral symbols is taken
// as a numeral, including ones that were never meant as such.
type AtticNumerals struct {
	table    *numerals.Table
	units    []numerals.UnitSet
	detector *regexp.Regexp
}

func NewAtticNumerals() (*AtticNumerals, error) {
	table, err := numerals.NewTable(atticWeights...)
	if err != nil {
		return nil, err
	}

	var class strings.Builder
	for _, w := range atticWeights {
		class.WriteString(regexp.QuoteMeta(w.Symbol))
	}
	detector, err := regexp.Compile(`(?i)(?:[` + class.String() + `]\x{0305})+`)
	if err != nil {
		return nil, err
	}

	return &AtticNumerals{table: table, units: atticUnits, detector: detector}, nil
}

func (a *AtticNumerals) Kind() Kind {
	return KindAtticNumerals
}

// Parse returns the value of a single numeral and its unit, if one of its
// symbols implies one.
func (a *AtticNumerals) Parse(text string) numerals.Value {
	text = prep.StripMarks(prep.LanguageWide(text), prep.CombiningOverline)
	symbols := graphemes.Split(text)

	unit, _ := numerals.Classify(symbols, a.units)
	return numerals.NewValue(numerals.Aggregate(symbols, a.table), unit)
}

// ProcessNumeralsInText replaces every overlined numeral run in text with
// format applied to its parsed value.
func (a *AtticNumerals) ProcessNumeralsInText(text string, format func(numerals.Value) string) string {
	text = prep.LanguageWide(text)
	return numerals.ScanAndReplace(text, a.detector, func(match string) string {
		return format(a.Parse(match))
	})
}

// Process replaces numerals in text with their decimal values.
func (a *AtticNumerals) Process(text string) string {
	return a.ProcessNumeralsInText(text, DecimalFormat)
}

// DecimalFormat renders a value as an integer or, for fractions, with at most
// two decimal places.
func DecimalFormat(v numerals.Value) string {
	return v.Decimal(2)
}
