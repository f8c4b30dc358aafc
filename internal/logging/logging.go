// Package logging adapts zap to the collection Logger interface.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger. Its methods take alternating key/value
// pairs after the message.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// ParseLevel maps debug|info|warn|error to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// New builds a JSON production logger writing to stderr at level.
func New(level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Sampling = nil
	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return Wrap(z, config.Level), nil
}

// Wrap adapts an existing zap logger. The level is only used by SetLevel.
func Wrap(z *zap.Logger, level zap.AtomicLevel) *Logger {
	return &Logger{sugar: z.Sugar(), level: level}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return Wrap(zap.NewNop(), zap.NewAtomicLevel())
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level zapcore.Level) { l.level.SetLevel(level) }

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sugar: l.sugar.With(args...), level: l.level}
}

// Debug logs msg with alternating key/value args at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info logs msg with alternating key/value args at info level.
func (l *Logger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn logs msg with alternating key/value args at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error logs msg with alternating key/value args at error level.
func (l *Logger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.sugar.Sync() }
