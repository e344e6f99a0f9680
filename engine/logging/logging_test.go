package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New("info", &buf, false), "combat")

	log.Debug().Msg("hidden")
	log.Info().Uint64("entity", 7).Msg("target locked")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "combat", rec["component"])
	assert.Equal(t, "target locked", rec["message"])
	assert.Equal(t, float64(7), rec["entity"])
	assert.Contains(t, rec, "time")
}

func TestConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf, true)
	log.Warn().Msg("invalid path")
	assert.Contains(t, buf.String(), "invalid path")
	assert.Contains(t, buf.String(), "WRN")
}

func TestSampledKeepsBurst(t *testing.T) {
	var buf bytes.Buffer
	log := Sampled(New("info", &buf, false), 3, 1000)
	for i := 0; i < 50; i++ {
		log.Info().Int("i", i).Msg("tick")
	}
	n := strings.Count(buf.String(), "\n")
	assert.GreaterOrEqual(t, n, 3)
	assert.Less(t, n, 10)
}
