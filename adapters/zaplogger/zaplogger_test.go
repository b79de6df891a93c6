package zaplogger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/traf3li/go-session/adapters/zaplogger"
)

func TestLoggerForwardsToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zaplogger.New(zap.New(core))

	logger.Debug("refresh in %dms", 42)
	logger.Info("token refreshed for %s", "user-1")
	logger.Error("refresh failed: %v", "boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "refresh in 42ms", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "token refreshed for user-1", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "refresh failed: boom", entries[2].Message)
}

func TestNewNilFallsBackToNop(t *testing.T) {
	logger := zaplogger.New(nil)
	assert.NotPanics(t, func() {
		logger.Debug("no sink")
		logger.Info("no sink")
		logger.Error("no sink")
	})
}
