package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trapierrors "github.com/KenkenGoda/trapi/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, "fit")
	testLogger.Warn("warning message")
	testLogger.Error("error message", fmt.Errorf("test error"), BlockKey, "CE_city")

	require.NotEmpty(t, buffer.String())
	assert.True(t, testLogger.ContainsMessage("debug message"))
	assert.True(t, testLogger.ContainsMessage("error message"))
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "test error"))
	assert.True(t, testLogger.ContainsField(BlockKey, "CE_city"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestTestLoggerLevelFilter(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("hidden")
	testLogger.Info("hidden too")
	testLogger.Warn("shown")

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.False(t, testLogger.Enabled(context.Background(), LevelInfo))
	assert.True(t, testLogger.Enabled(context.Background(), LevelError))
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	child := testLogger.With(ComponentKey, "feature")

	child.Info("fitted")
	testLogger.Info("plain")

	assert.True(t, testLogger.ContainsField(ComponentKey, "feature"))
	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	_, has := entries[1][ComponentKey]
	assert.False(t, has, "parent logger must not inherit child fields")
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, LevelInfo)

	logger.Info("Dataframe shape: (3, 2)", SamplesKey, 3)
	logger.Debug("not emitted")

	out := buf.String()
	assert.Contains(t, out, "Dataframe shape: (3, 2)")
	assert.Contains(t, out, "data.samples=3")
	assert.NotContains(t, out, "not emitted")
}

func TestZerologLoggerAttachesStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ComponentKey, "train")

	err := trapierrors.NewValidationError("n_splits", "must be at least 2", 1)
	logger.Error("cross validation failed", err)

	out := buf.String()
	assert.Contains(t, out, `"error":"trapi: validation failed`)
	assert.Contains(t, out, `"`+StacktraceAttrKey+`"`)
	assert.Contains(t, out, `"param_name":"n_splits"`)
	assert.Contains(t, out, `"ml.component":"train"`)
}

func TestSetupLogger(t *testing.T) {
	previous := GetLogger()
	defer SetLogger(previous)

	require.NoError(t, SetupLogger("debug", true))
	assert.True(t, GetLogger().Enabled(context.Background(), LevelDebug))

	err := SetupLogger("verbose", false)
	require.Error(t, err)
	var valErr *trapierrors.ValidationError
	assert.True(t, trapierrors.As(err, &valErr))
}

func TestSetLoggerRoutesWarnings(t *testing.T) {
	previous := GetLogger()
	defer SetLogger(previous)

	testLogger, _ := NewTestLogger(LevelDebug)
	SetLogger(testLogger)

	trapierrors.Warn(trapierrors.NewDataConversionWarning("price", "float64", "float32", "range"))

	assert.True(t, testLogger.ContainsMessage("warning"))
	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.True(t, strings.Contains(entries[0][ErrAttrKey].(string), "float32"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"trace", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
