package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a structured JSON logger. A debug level of 2 or more (the
// GHA2DB_DEBUG convention for verbose output, including SQLs) enables debug
// entries; negative levels keep only warnings and errors.
func New(debug int) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false
	cfg.Level = zap.NewAtomicLevelAt(Level(debug))

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Level maps a gha2db debug level to a zap level.
func Level(debug int) zapcore.Level {
	switch {
	case debug >= 2:
		return zapcore.DebugLevel
	case debug < 0:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
