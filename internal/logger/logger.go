// Package logger holds the process-wide zap logger.
//
// Log is a no-op logger until Init runs, so packages can log freely from
// tests without any setup.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the shared structured logger.
var Log = zap.NewNop()

// Init replaces Log. With debug set, everything from debug level up goes to
// stderr with caller information; otherwise only warnings and errors are
// printed, without timestamps, so they read like normal CLI output.
func Init(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = ""
		cfg.EncoderConfig.CallerKey = ""
		cfg.EncoderConfig.StacktraceKey = ""
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.DisableStacktrace = true
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		// Logging must never block the run; fall back to a bare stderr core.
		l = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zapcore.WarnLevel,
		))
	}
	Log = l
}

// Sync flushes buffered log entries. Errors are ignored because syncing
// stderr fails on some platforms (EINVAL on Linux terminals).
func Sync() {
	_ = Log.Sync()
}
