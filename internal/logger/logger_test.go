package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(Config{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
	l.Warn().Msg("x")
}

func TestForTagsComponent(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	var buf bytes.Buffer
	Set(zerolog.New(&buf))
	l := For("driver")
	l.Info().Int("episodes", 3).Msg("session complete")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "driver", line["component"])
	assert.Equal(t, "session complete", line["message"])
	assert.EqualValues(t, 3, line["episodes"])
}
