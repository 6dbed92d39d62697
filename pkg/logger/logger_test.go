package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newsalpha/backend/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output must be JSON")
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, log)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "test")

	tests := []struct {
		level string
		emit  func()
	}{
		{"debug", func() { log.Debug("m") }},
		{"info", func() { log.Info("m") }},
		{"warn", func() { log.Warn("m") }},
		{"error", func() { log.Error("m") }},
		{"info", func() { log.Infof("%s", "m") }},
		{"warn", func() { log.Warnf("%s", "m") }},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.emit()
		entry := decode(t, &buf)
		assert.Equal(t, tt.level, entry["level"])
		assert.Equal(t, "m", entry["message"])
		assert.Equal(t, "test", entry["env"])
	}
}

func TestFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "test")

	log.Component("collector").
		WithFields(map[string]any{"source": "ft", "page": 2}).
		WithError(errors.New("boom")).
		Info("page failed")

	entry := decode(t, &buf)
	assert.Equal(t, "collector", entry["module"])
	assert.Equal(t, "ft", entry["source"])
	assert.Equal(t, float64(2), entry["page"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNewNopDiscards(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Error("dropped")
	})
}
