package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"assetdesk/internal/collection"
)

var _ collection.Logger = (*Logger)(nil)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		" warn": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	l, err := New("warn")
	require.NoError(t, err)
	assert.NotNil(t, l)
	_, err = New("loud")
	assert.Error(t, err)
}

func TestLogger_WritesKeyValues(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core, logs := observer.New(level)
	l := Wrap(zap.New(core), level)

	l.Debug("hidden")
	l.Info("collection operation completed", "operation", "create", "entity", "asset")
	l.With("screen", "assets").Warn("collection operation abandoned", "id", "AST-001")
	l.Error("collection operation failed", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "create", entries[0].ContextMap()["operation"])
	assert.Equal(t, "assets", entries[1].ContextMap()["screen"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	l.SetLevel(zapcore.DebugLevel)
	l.Debug("visible")
	assert.Equal(t, 1, logs.FilterMessage("visible").Len())
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("dropped", "k", "v")
	assert.NoError(t, l.Sync())
}
