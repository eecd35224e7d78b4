// Package logging provides the diagnostic logger. User-facing output is
// printed by the commands themselves; this logger records requests and
// failures for troubleshooting and never sees an API key in clear text.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation defaults
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// Options configures New
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// File receives JSON log lines with rotation. Empty disables file output.
	File string
	// Console writes human-readable lines to stderr
	Console bool
	// Development enables debug level and caller information
	Development bool
}

// Logger wraps zap.Logger and redacts sensitive fields before they are encoded
type Logger struct {
	zap *zap.Logger
}

// New builds a Logger from opts. With neither a file nor console output
// the logger discards everything.
func New(opts Options) *Logger {
	level := ParseLevel(opts.Level, zapcore.InfoLevel)
	if opts.Development {
		level = zapcore.DebugLevel
	}

	var cores []zapcore.Core
	if opts.File != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), writer, level))
	}
	if opts.Console {
		cfg := encoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level))
	}
	if len(cores) == 0 {
		return Nop()
	}

	zopts := []zap.Option{}
	if opts.Development {
		zopts = append(zopts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	return &Logger{zap: zap.New(zapcore.NewTee(cores...), zopts...)}
}

// NewWithCore wraps an existing core, mostly for tests
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zap: zap.New(core)}
}

// Nop returns a Logger that discards everything
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Named returns a child logger with name appended to the logger name
func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name)}
}

// With returns a child logger carrying fields on every entry
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(redactFields(fields)...)}
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(RedactSensitiveData(msg), redactFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(RedactSensitiveData(msg), redactFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(RedactSensitiveData(msg), redactFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(RedactSensitiveData(msg), redactFields(fields)...)
}

// ParseLevel parses debug, info, warn (or warning) and error, case-insensitively
func ParseLevel(s string, fallback zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return fallback
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}
