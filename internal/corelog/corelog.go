// Package corelog defines the diagnostic event the core's "no hidden
// global state" design note asks for: a structured record the core emits
// and the caller observes, never a logger the core owns. The severity
// levels are the teacher's internal/logging Level enum carried over
// unchanged; what's replaced is the delivery mechanism — an injected
// Sink function instead of a package-level *Logger singleton, since a
// pure core has no business reaching for a global. The teacher's own
// Logger wraps a plain *log.Logger, not log/slog; SlogSink below adopts
// slog as the demonstration binary's own choice of structured-logging
// library, independent of that grounding.
package corelog

import (
	"log/slog"

	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// Level mirrors the teacher's logging.Level severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is one structured event: a phase name, a severity, a message,
// and whatever rdperr.Field data the emitting layer attached (the same
// Fields() an error's type exposes, so an AuthenticationFailure and its
// diagnostic carry identical structured data).
type Diagnostic struct {
	Level   Level
	Phase   string
	Message string
	Fields  []rdperr.Field
}

// Sink receives diagnostics as they are emitted. A nil Sink is valid: the
// caller that never supplies one simply gets no diagnostics, not a panic.
type Sink func(Diagnostic)

// Emit calls sink if it is non-nil, so callers driving conn.Machine /
// session.Machine can pass a possibly-nil sink without a guard at every
// call site.
func Emit(sink Sink, d Diagnostic) {
	if sink != nil {
		sink(d)
	}
}

// SlogSink adapts a *slog.Logger into a Sink, the demonstration binary's
// default wiring. Fields are passed through as slog key/value pairs rather
// than pre-formatted into Message, preserving the "structured fields,
// never formatted strings" rule one layer further than the core itself.
func SlogSink(logger *slog.Logger) Sink {
	return func(d Diagnostic) {
		args := make([]any, 0, len(d.Fields)*2+2)
		args = append(args, "phase", d.Phase)
		for _, f := range d.Fields {
			args = append(args, f.Key, f.Value)
		}
		switch d.Level {
		case LevelDebug:
			logger.Debug(d.Message, args...)
		case LevelWarn:
			logger.Warn(d.Message, args...)
		case LevelError:
			logger.Error(d.Message, args...)
		default:
			logger.Info(d.Message, args...)
		}
	}
}
