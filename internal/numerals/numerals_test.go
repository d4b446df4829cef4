package numerals

import (
	"math/big"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, weights ...Weight) *Table {
	t.Helper()
	table, err := NewTable(weights...)
	require.NoError(t, err)
	return table
}

func TestAggregateAdditive(t *testing.T) {
	table := mustTable(t,
		Weight{"Π", "5"},
		Weight{"Ι", "1"},
	)

	got := Aggregate([]string{"Π", "Ι", "Ι", "Ι"}, table)
	assert.Equal(t, 0, got.Cmp(big.NewRat(8, 1)))

	got = Aggregate([]string{"Π", "?", "Ι", "Ι", "x", "Ι"}, table)
	assert.Equal(t, 0, got.Cmp(big.NewRat(8, 1)), "unknown symbols weigh nothing")

	assert.Equal(t, 0, Aggregate(nil, table).Sign())
}

func TestAggregateExactFractions(t *testing.T) {
	table := mustTable(t, Weight{"o", "1/6"})

	symbols := make([]string, 600)
	for i := range symbols {
		symbols[i] = "o"
	}
	got := Aggregate(symbols, table)
	assert.True(t, got.IsInt())
	assert.Equal(t, "100", got.RatString())
}

func TestNewTableRejectsInvalidWeight(t *testing.T) {
	_, err := NewTable(Weight{"a", "1"}, Weight{"b", "one sixth"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWeight)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestTableWeightIsCopy(t *testing.T) {
	table := mustTable(t, Weight{"Δ", "10"})
	w, ok := table.Weight("Δ")
	require.True(t, ok)
	w.SetInt64(99)

	again, _ := table.Weight("Δ")
	assert.Equal(t, "10", again.RatString())

	_, ok = table.Weight("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}

func TestClassifyPriority(t *testing.T) {
	sets := []UnitSet{
		{Unit: "Drachma", Symbols: []string{"d1"}},
		{Unit: "Talents", Symbols: []string{"d1", "t1"}},
	}

	unit, ok := Classify([]string{"d1"}, sets)
	require.True(t, ok)
	assert.Equal(t, Unit("Drachma"), unit)

	unit, ok = Classify([]string{"x", "t1"}, sets)
	require.True(t, ok)
	assert.Equal(t, Unit("Talents"), unit)

	unit, ok = Classify([]string{"t1", "d1"}, sets)
	require.True(t, ok)
	assert.Equal(t, Unit("Drachma"), unit, "set order wins over symbol order")

	unit, ok = Classify([]string{"x"}, sets)
	assert.False(t, ok)
	assert.Equal(t, NoUnit, unit)

	_, ok = Classify(nil, nil)
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	a := NewValue(big.NewRat(29, 2), "Drachma")
	b := NewValue(big.NewRat(58, 4), "Drachma")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewValue(big.NewRat(29, 2), NoUnit)))

	unit, ok := a.Unit()
	assert.True(t, ok)
	assert.Equal(t, Unit("Drachma"), unit)
	assert.Equal(t, "29/2 Drachma", a.String())

	n := a.Number()
	n.SetInt64(0)
	assert.Equal(t, "29/2", a.Number().RatString(), "Number returns a copy")

	var zero Value
	assert.Equal(t, "0", zero.String())
	_, ok = zero.Unit()
	assert.False(t, ok)
}

func TestValueDecimal(t *testing.T) {
	tests := []struct {
		num, den int64
		want     string
	}{
		{11, 1, "11"},
		{29, 2, "14.5"},
		{155, 12, "12.92"},
		{263, 6, "43.83"},
		{310, 3, "103.33"},
		{0, 1, "0"},
	}
	for _, tt := range tests {
		v := NewValue(big.NewRat(tt.num, tt.den), NoUnit)
		assert.Equal(t, tt.want, v.Decimal(2), "%d/%d", tt.num, tt.den)
	}
}

var overbarRun = regexp.MustCompile(`(?:[ΙΠΔ]\x{0305})+`)

func TestScanAndReplaceNoMatch(t *testing.T) {
	called := false
	got := ScanAndReplace("abc", overbarRun, func(string) string {
		called = true
		return "!"
	})
	assert.Equal(t, "abc", got)
	assert.False(t, called)
}

func TestScanAndReplaceReassembly(t *testing.T) {
	run1 := "Δ\u0305Ι\u0305"
	run2 := "Π\u0305"
	replacements := map[string]string{run1: "X", run2: "Y"}

	var seen []string
	got := ScanAndReplace("A"+run1+"B"+run2+"C", overbarRun, func(m string) string {
		seen = append(seen, m)
		return replacements[m]
	})
	assert.Equal(t, "AXBYC", got)
	assert.Equal(t, []string{run1, run2}, seen)
}

func TestScanAndReplaceMaximalRuns(t *testing.T) {
	text := "Δ\u0305Ι\u0305Ι\u0305 Δ Ι\u0305"
	got := ScanAndReplace(text, overbarRun, func(m string) string {
		return "<" + strings.ReplaceAll(m, "\u0305", "") + ">"
	})
	assert.Equal(t, "<ΔΙΙ> Δ <Ι>", got)
}

func TestScanAndReplaceLongerReplacement(t *testing.T) {
	got := ScanAndReplace("Π\u0305", overbarRun, func(string) string { return "five hundred-ish" })
	assert.Equal(t, "five hundred-ish", got)
}
