package systems

import (
	"context"
	"strings"
	"testing"

	"github.com/jusunglee/romanization/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisedRomanization(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"페이커", "peikeo"},
		{"김치", "gimchi"},
		{"토르소", "toreuso"},
		{"꿈을꾸다", "kkumeulkkuda"},
		{"안녕 하세요", "annyeong haseyo"},
		{"Faker#KR1", "Faker#KR1"},
		{"ㄱㅏ", "ㄱㅏ"},
		{"", ""},
	}
	rr := NewRevisedRomanization()
	for _, tt := range tests {
		assert.Equal(t, tt.want, rr.Process(tt.input), tt.input)
	}
	assert.Equal(t, KindRevisedRomanization, rr.Kind())
}

func newHanja(t *testing.T) *HanjaReadings {
	t.Helper()
	h, err := NewHanjaReadings(context.Background(), tables.Embedded(), nil)
	require.NoError(t, err)
	return h
}

func TestHanjaReadings(t *testing.T) {
	h := newHanja(t)

	assert.Equal(t, "대한민국", h.ProcessToHangeul("大韓民國"))
	assert.Equal(t, "daehanmingug", h.Process("大韓民國"))
	assert.Equal(t, "[대 태]한민국", h.ProcessWithReadings("大韓民國").Flatten())
	assert.Equal(t, "[락 악 요]", h.ProcessWithReadings("樂").Flatten())
	assert.Equal(t, "한자 and 𠀀", h.ProcessToHangeul("漢字 and 𠀀"))
	assert.Equal(t, "", h.Process(""))
	assert.Equal(t, KindHanjaReadings, h.Kind())
}

type upperSystem struct{}

func (upperSystem) Kind() Kind                 { return "upper" }
func (upperSystem) Process(text string) string { return strings.ToUpper("<" + text + ">") }

func TestHanjaReadingsProcessWith(t *testing.T) {
	h := newHanja(t)
	assert.Equal(t, "<한국>", h.ProcessWith("韓國", upperSystem{}))

	custom, err := NewHanjaReadings(context.Background(), tables.Embedded(), upperSystem{})
	require.NoError(t, err)
	assert.Equal(t, "<한국>", custom.Process("韓國"))
}

func TestHanjaReadingsKeepsFirstSyllable(t *testing.T) {
	p := tables.MemoryProvider{"HanjaHangeul": {{Key: "金", Value: "금x 김"}}}
	h, err := NewHanjaReadings(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, "[금 김]", h.ProcessWithReadings("金").Flatten())
}

func TestHanjaReadingsMissingTable(t *testing.T) {
	_, err := NewHanjaReadings(context.Background(), tables.MemoryProvider{}, nil)
	require.Error(t, err)
	assert.True(t, tables.IsNotFound(err))
}

func TestHanjaReadingsKeepsCompatibilityIdeographs(t *testing.T) {
	p := tables.MemoryProvider{"HanjaHangeul": {
		{Key: "\uF914", Value: "락"},
		{Key: "\u6A02", Value: "악"},
	}}
	h, err := NewHanjaReadings(context.Background(), p, nil)
	require.NoError(t, err)

	s := h.ProcessWithReadings("\uF914\u6A02")
	require.Len(t, s.Characters, 2)
	assert.Equal(t, "\uF914", s.Characters[0].Character)
	assert.Equal(t, "락", s.Characters[0].Flatten())
	assert.Equal(t, "악", s.Characters[1].Flatten())
	assert.Equal(t, "락악", h.ProcessToHangeul("\uF914\u6A02"))

	// Unknown compatibility ideographs pass through untouched.
	assert.Equal(t, "\uF900", h.ProcessWithReadings("\uF900").Flatten())

	s = h.ProcessWithReadings("e\u0301x")
	require.Len(t, s.Characters, 3)
	assert.Equal(t, "e\u0301x", s.Flatten())
}
