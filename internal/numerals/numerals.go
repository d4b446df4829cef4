// Package numerals parses additive numeral notations into exact values and
// finds such numerals inside running text.
package numerals

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var ErrInvalidWeight = errors.New("invalid numeral weight")

// Weight declares the value of one symbol. Value is anything big.Rat can
// parse: "5", "0.25" or "1/6".
type Weight struct {
	Symbol string
	Value  string
}

// Table maps numeral symbols to exact weights. It is read-only once built.
type Table struct {
	weights map[string]*big.Rat
}

// NewTable parses every weight up front so a table that cannot represent a
// value exactly is rejected at construction instead of rounding later.
func NewTable(weights ...Weight) (*Table, error) {
	t := &Table{weights: make(map[string]*big.Rat, len(weights))}
	for _, w := range weights {
		r, ok := new(big.Rat).SetString(w.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %q for symbol %q", ErrInvalidWeight, w.Value, w.Symbol)
		}
		t.weights[w.Symbol] = r
	}
	return t, nil
}

// Weight returns a copy of the weight of symbol.
func (t *Table) Weight(symbol string) (*big.Rat, bool) {
	w, ok := t.weights[symbol]
	if !ok {
		return nil, false
	}
	return new(big.Rat).Set(w), true
}

func (t *Table) Len() int {
	return len(t.weights)
}

// Aggregate sums the weights of symbols. Symbols missing from the table add
// nothing; there is no place value and no subtractive pairing.
func Aggregate(symbols []string, table *Table) *big.Rat {
	total := new(big.Rat)
	for _, s := range symbols {
		if w, ok := table.weights[s]; ok {
			total.Add(total, w)
		}
	}
	return total
}

// Unit labels what a numeral counts. The empty Unit means none.
type Unit string

const NoUnit Unit = ""

// UnitSet lists the symbols whose presence marks a numeral as Unit.
type UnitSet struct {
	Unit    Unit
	Symbols []string
}

// Classify returns the unit of the first set, in the order given, that shares
// a symbol with symbols. A symbol listed under several units resolves to the
// earliest set.
func Classify(symbols []string, sets []UnitSet) (Unit, bool) {
	for _, set := range sets {
		if lo.ContainsBy(symbols, func(s string) bool { return lo.Contains(set.Symbols, s) }) {
			return set.Unit, true
		}
	}
	return NoUnit, false
}

// Value is a parsed numeral: an exact number and the unit it was written in,
// if any.
type Value struct {
	number *big.Rat
	unit   Unit
}

func NewValue(number *big.Rat, unit Unit) Value {
	if number == nil {
		number = new(big.Rat)
	}
	return Value{number: new(big.Rat).Set(number), unit: unit}
}

// Number returns a copy of the value.
func (v Value) Number() *big.Rat {
	if v.number == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(v.number)
}

func (v Value) Unit() (Unit, bool) {
	return v.unit, v.unit != NoUnit
}

func (v Value) Equal(other Value) bool {
	return v.unit == other.unit && v.Number().Cmp(other.Number()) == 0
}

// Decimal renders the number as an integer when it is one and otherwise
// rounded to prec decimal places with trailing zeros trimmed.
func (v Value) Decimal(prec int) string {
	n := v.Number()
	if n.IsInt() {
		return n.Num().String()
	}
	s := n.FloatString(prec)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

func (v Value) String() string {
	if v.unit == NoUnit {
		return v.Number().RatString()
	}
	return v.Number().RatString() + " " + string(v.unit)
}

// ScanAndReplace replaces every non-overlapping match of detector in text
// with processor(match), scanning left to right. Text between matches is
// copied unchanged. When nothing matches, text itself is returned.
func ScanAndReplace(text string, detector *regexp.Regexp, processor func(match string) string) string {
	locs := detector.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		b.WriteString(processor(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
