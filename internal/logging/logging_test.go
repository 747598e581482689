package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = New(Options{Verbose: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewQuiet(t *testing.T) {
	logger, err := New(Options{Quiet: true, Verbose: true})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabwitr.log")

	logger, err := New(Options{File: path, Verbose: true, Quiet: true})
	require.NoError(t, err)
	logger.Debug("enriched port", zap.Int("port", 9222))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "enriched port", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 9222, entry["port"])
	assert.Contains(t, entry, "time")
}
