package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a set of structured log fields
type Fields map[string]any

// Logger is the logging interface used across the ESA toolkit
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// zapLogger adapts a zap.Logger to the Logger interface
type zapLogger struct {
	base *zap.Logger
}

// NewDefaultLogger creates a logger writing structured JSON to stderr.
// The ESA_LOG_LEVEL environment variable overrides the default info level.
func NewDefaultLogger() Logger {
	level := zapcore.InfoLevel
	if lvl, err := zapcore.ParseLevel(os.Getenv("ESA_LOG_LEVEL")); err == nil {
		level = lvl
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return &zapLogger{base: zap.New(core)}
}

// WithFields creates a logger pre-populated with the given fields
func WithFields(fields Fields) Logger {
	return NewDefaultLogger().WithFields(fields)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{base: l.base.With(zapFields(fields)...)}
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.base.Debug(msg, mergeFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.base.Info(msg, mergeFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.base.Warn(msg, mergeFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Fields) {
	l.base.Error(msg, mergeFields(fields)...)
}

func zapFields(fields Fields) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}

func mergeFields(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	merged := Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return zapFields(merged)
}
