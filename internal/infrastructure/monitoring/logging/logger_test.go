package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "f", Value: 0.5}, Float64("f", 0.5))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))
}

func TestErrField(t *testing.T) {
	assert.Equal(t, "boom", Err(errors.New("boom")).Value)
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestZapLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Info("decided", String("status", "approved"), Float64("confidence", 0.9123))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "decided", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "approved", ctx["status"])
	assert.Equal(t, 0.9123, ctx["confidence"])
}

func TestWithAddsFieldsToChild(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	child := log.With(String("trace_id", "abc"))
	child.Warn("degraded retrieval")
	log.Info("no trace")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].ContextMap()["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestNamedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).Named("engine").Named("reasoner")

	log.Debug("chain merged")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine.reasoner", entries[0].LoggerName)
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
}

func TestNewLoggerAppliesDefaults(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNopLoggerIsInert(t *testing.T) {
	log := NewNopLogger()
	log.Info("ignored", Int("n", 1))
	assert.Equal(t, log, log.With(String("k", "v")))
	assert.Equal(t, log, log.Named("x"))
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("via default")
	require.Len(t, logs.All(), 1)

	SetDefault(nil)
	assert.NotNil(t, Default())
}
