package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONFormat(t *testing.T) {
	log, err := New(&Config{
		Level:      "debug",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_LevelFiltering(t *testing.T) {
	log, err := New(&Config{Level: "warn", Format: "json", Output: "stdout", TimeFormat: "15:04:05"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	log, err := New(&Config{Level: "verbose", Format: "json", Output: "stdout", TimeFormat: "15:04:05"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotewire.log")

	log, err := New(&Config{Level: "info", Format: "json", Output: path, TimeFormat: "15:04:05"})
	require.NoError(t, err)

	log.Info("quote sent", zap.String("quote_id", "q-1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quote sent")
	assert.Contains(t, string(data), "q-1")
}

func TestNew_UnwritableFileFallsBackToStdout(t *testing.T) {
	log, err := New(&Config{
		Level:      "info",
		Format:     "json",
		Output:     filepath.Join(t.TempDir(), "missing", "nested", "app.log"),
		TimeFormat: "15:04:05",
	})
	require.NoError(t, err)
	require.NotNil(t, log)

	// Logging must not panic even though the file could not be opened.
	log.Info("still alive")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}
