package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("product", "A").Msg("forecast")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "forecast", entry["message"])
	assert.Equal(t, "A", entry["product"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&Config{Level: "debug", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("selected method")
	assert.Contains(t, buf.String(), "selected method")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestInvalidLevel(t *testing.T) {
	_, err := NewWithWriter(&Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestEmptyLevelDefaultsToInfo(t *testing.T) {
	logger, err := NewWithWriter(&Config{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demandcast.log")
	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Info().Msg("written")
	assert.FileExists(t, path)
}
