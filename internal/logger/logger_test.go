package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.With("system", "hanyu-pinyin").WithGroup("table").Info("loaded", "rows", 12)
	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "system"+reset+"=hanyu-pinyin")
	assert.Contains(t, out, "table.rows"+reset+"=12")

	buf.Reset()
	log.Error("failed")
	assert.Contains(t, buf.String(), "ERR")
}

func TestPrettyHandlerWithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))
	_ = base.With("request", "a")

	base.Info("plain")
	assert.NotContains(t, buf.String(), "request")
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", slog.LevelDebug)
	log.Debug("built system", "system", "attic-numerals")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "built system", rec["msg"])
	assert.Equal(t, "attic-numerals", rec["system"])
	assert.Equal(t, "DEBUG", rec["level"])
}
