package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "gateway.log")

	logger, err := NewLogger("debug", "json", logFile)
	require.NoError(t, err)
	logger.Info("hello", zap.String("org", "octo"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"org\":\"octo\"")
	assert.Contains(t, string(data), "\"msg\":\"hello\"")
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "console.log")

	logger, err := NewLogger("debug", "console", logFile)
	require.NoError(t, err)
	logger.Info("test message", zap.String("key", "value"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test message")
	assert.NotContains(t, string(data), "\"msg\"")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "warn.log")

	logger, err := NewLogger("warn", "json", logFile)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewLogger_FileError(t *testing.T) {
	logger, err := NewLogger("info", "json", "/non/existent/directory/test.log")
	assert.Error(t, err)
	assert.Nil(t, logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"invalid", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetCorrelationID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithCorrelationID(ctx, "corr-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "corr-1", GetCorrelationID(ctx))
}

func TestWithContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("plain")
	ctx := WithRequestID(context.Background(), "req-9")
	WithContext(ctx, base).Info("annotated")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "req-9", entries[1].ContextMap()[FieldRequestID])
}
