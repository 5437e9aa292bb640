package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(Config{Level: "no-such-level"})
	require.NoError(t, err)
	defer log.Sync()

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger_WritesToFileWithRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	log, err := NewLogger(Config{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("startup complete")
	log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "startup complete")
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestNewLogger_DevelopmentUsesConsoleEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")

	log, err := NewLogger(Config{Level: "debug", Development: true, File: path})
	require.NoError(t, err)

	log.Debug("tracing request")
	log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Console encoding is tab-separated, not JSON.
	assert.Contains(t, string(data), "tracing request")
	assert.NotContains(t, string(data), `"message"`)
}
