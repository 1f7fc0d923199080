// Package fatal is the escalation point for unrecoverable configuration
// errors: it logs one structured diagnostic and terminates the process.
package fatal

import (
	"errors"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Handler logs errors through zap's Fatal level.
type Handler struct {
	logger *zap.Logger
}

// Option configures a Handler.
type Option func(*options)

type options struct {
	hook zapcore.CheckWriteHook
}

// WithHook replaces what happens after the diagnostic is written. The default
// exits with status 1; tests pass zapcore.WriteThenPanic.
func WithHook(hook zapcore.CheckWriteHook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

// New returns a Handler writing to logger.
func New(logger *zap.Logger, opts ...Option) *Handler {
	o := options{hook: zapcore.WriteThenFatal}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &Handler{logger: logger.WithOptions(zap.WithFatalHook(o.hook))}
}

var (
	defaultOnce sync.Once
	fallback    *zap.Logger
)

func defaultLogger() *zap.Logger {
	defaultOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err := cfg.Build()
		if err != nil {
			logger = zap.NewExample()
		}
		fallback = logger
	})
	return fallback
}

// Default returns a Handler on a JSON stderr logger.
func Default() *Handler {
	return New(nil)
}

// Check does nothing for a nil err. Otherwise it logs err and does not return
// unless the configured hook allows it.
func (h *Handler) Check(err error) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.Error(err)}
	var m zapcore.ObjectMarshaler
	if errors.As(err, &m) {
		fields = append(fields, zap.Inline(m))
	}
	h.logger.Fatal("configuration error", fields...)
}
