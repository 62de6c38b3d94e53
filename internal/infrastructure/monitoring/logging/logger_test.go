package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
)

func TestNewLogger_Defaults(t *testing.T) {
	t.Parallel()

	log, err := logging.NewLogger(logging.Config{})
	require.NoError(t, err)
	require.NotNil(t, log)

	// Should not panic on any level.
	log.Debug("debug msg")
	log.Info("info msg", logging.String("k", "v"))
	log.Warn("warn msg", logging.Int("n", 1))
	log.Error("error msg", logging.Err(errors.New("boom")))
}

func TestLogger_FieldsAndLevels(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	log := logging.NewLoggerFromCore(core)

	log.Info("scoring complete",
		logging.String("document_id", "doc-1"),
		logging.Float64("final_score", 0.83),
		logging.Bool("escalated", true),
		logging.Duration("elapsed", 120*time.Millisecond),
	)

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "scoring complete", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "doc-1", fields["document_id"])
	assert.Equal(t, 0.83, fields["final_score"])
	assert.Equal(t, true, fields["escalated"])
}

func TestLogger_WithAndNamed(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	log := logging.NewLoggerFromCore(core)

	child := log.With(logging.String("component", "relevance")).Named("engine")
	child.Warn("escalation skipped")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].LoggerName)
	assert.Equal(t, "relevance", entries[0].ContextMap()["component"])
}

func TestErr_NilError(t *testing.T) {
	t.Parallel()

	f := logging.Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestDefault_SetAndGet(t *testing.T) {
	nop := logging.NewNopLogger()
	logging.SetDefault(nop)
	assert.Equal(t, nop, logging.Default())

	// nil must not replace the current default
	logging.SetDefault(nil)
	assert.Equal(t, nop, logging.Default())
}
