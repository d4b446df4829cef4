package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind("Hanyu-Pinyin")
	require.NoError(t, err)
	assert.Equal(t, KindHanyuPinyin, got)

	_, err = ParseKind("wade-giles")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestParseReadingTypes(t *testing.T) {
	got, err := ParseReadingTypes(KindHanyuPinyin, []string{"hanyu-pinyin", "XHC", ""})
	require.NoError(t, err)
	assert.Equal(t, ReadingHanyuPinyin|ReadingXHC, got)

	got, err = ParseReadingTypes(KindHanyuPinyin, nil)
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = ParseReadingTypes(KindHanjaReadings, []string{"hangeul"})
	require.NoError(t, err)
	assert.Equal(t, ReadingHangeul, got)

	_, err = ParseReadingTypes(KindHanjaReadings, []string{"xhc"})
	assert.Error(t, err)

	_, err = ParseReadingTypes(KindAtticNumerals, []string{"hangeul"})
	assert.Error(t, err)
}

func TestDetectScript(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		ok    bool
	}{
		{"페이커", KindRevisedRomanization, true},
		{"不知火舞", KindHanyuPinyin, true},
		{"大韓民國 한국", KindRevisedRomanization, true},
		{"Faker", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectScript(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestReadingTypeName(t *testing.T) {
	assert.Equal(t, "xhc", ReadingTypeName(KindHanyuPinyin, ReadingXHC))
	assert.Equal(t, "pinyin-dict", ReadingTypeName(KindHanyuPinyin, ReadingPinyinDict))
	assert.Equal(t, "hangeul", ReadingTypeName(KindHanjaReadings, ReadingHangeul))
	assert.Equal(t, "", ReadingTypeName(KindAtticNumerals, 1))
}

func TestHasNumerals(t *testing.T) {
	for _, k := range Kinds() {
		assert.Equal(t, k == KindAtticNumerals, HasNumerals(k), k)
	}
}
