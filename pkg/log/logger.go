package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	trapierrors "github.com/KenkenGoda/trapi/pkg/errors"
)

// consoleTimeFormat mirrors the "[HH:MM:SS] - message" lines of the original
// competition scripts.
const consoleTimeFormat = "15:04:05"

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewConsoleLogger(os.Stderr, LevelInfo)
)

// GetLogger returns the library-wide logger.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetLogger replaces the library-wide logger and routes errors.Warn through it.
func SetLogger(l Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()

	trapierrors.SetZerologWarnFunc(func(w error) {
		l.Warn("warning", w)
	})
}

// SetupLogger configures the global logger from a level name ("debug",
// "info", "warn", "error"). When jsonOutput is false a human readable console
// writer is used.
func SetupLogger(level string, jsonOutput bool) error {
	lvl, ok := ParseLevel(level)
	if !ok {
		return trapierrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
	if jsonOutput {
		SetLogger(NewZerologLogger(os.Stderr, lvl))
	} else {
		SetLogger(NewConsoleLogger(os.Stderr, lvl))
	}
	return nil
}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger returns a Logger writing JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

// NewConsoleLogger returns a Logger writing human readable lines to w.
func NewConsoleLogger(w io.Writer, level Level) Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat, NoColor: true}
	zl := zerolog.New(cw).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	addFields(l.zl.Debug(), fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	addFields(l.zl.Info(), fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	addFields(l.zl.Warn(), fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	addFields(l.zl.Error(), fields).Msg(msg)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.zl.GetLevel()
}

// addFields attaches key/value pairs to e. A leading error value is attached
// under ErrAttrKey with its stack trace. zerolog hands out a nil event for
// disabled levels and every method on it is a no-op.
func addFields(e *zerolog.Event, fields []any) *zerolog.Event {
	if e == nil {
		return e
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = withError(e, err)
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

func withError(e *zerolog.Event, err error) *zerolog.Event {
	e = e.AnErr(ErrAttrKey, err)
	var detail zerolog.LogObjectMarshaler
	if errors.As(err, &detail) {
		e = e.Object("error_detail", detail)
	}
	if st := extractStacktrace(err); st != "" {
		e = e.Str(StacktraceAttrKey, st)
	}
	return e
}

// extractStacktrace returns the stack recorded by cockroachdb/errors.WithStack.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
