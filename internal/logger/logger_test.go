package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogDefaultsToNop(t *testing.T) {
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() { Log.Info("hello", zap.String("k", "v")) })
}

// TestInit checks the enabled levels of the debug and non-debug loggers.
func TestInit(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	Init(true)
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))

	Init(false)
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.WarnLevel))
}
