// Package klog is the kernel's one seam onto a concrete logging backend.
// Nothing outside this package imports zerolog directly; Kernel holds a
// klog.Logger and calls its leveled methods, the same indirection the
// teacher uses to sit github.com/joeycumines/logiface between application
// code and github.com/rs/zerolog (see logiface-zerolog/zerolog.go in the
// retrieval pack). Field chaining mirrors that adapter's builder style.
package klog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the kernel-internal logging interface. All methods are no-ops
// below the configured level: the zerolog backend returns a nil event for a
// disabled level. Enabled reports the level check up front via
// zerolog.Logger.GetLevel; the kernel itself does not call it.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger writing to w at the given level. A nil w defaults to
// os.Stderr; level is applied as given (zerolog's zero Level is DebugLevel).
func New(w io.Writer, level zerolog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return Logger{z: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything, allocation-free.
func Nop() Logger {
	return Logger{z: zerolog.Nop()}
}

// Enabled reports whether level would currently produce output, letting
// hot paths skip building a Builder entirely.
func (l Logger) Enabled(level zerolog.Level) bool {
	return l.z.GetLevel() <= level
}

// Event starts a structured log entry at level. Chain Uint32/Int/Str/etc.
// then call Msg to emit, mirroring the teacher's Event/Builder chain.
func (l Logger) Event(level zerolog.Level) *zerolog.Event {
	return l.z.WithLevel(level)
}

func (l Logger) Trace() *zerolog.Event { return l.z.Trace() }
func (l Logger) Debug() *zerolog.Event { return l.z.Debug() }
func (l Logger) Info() *zerolog.Event  { return l.z.Info() }
func (l Logger) Warn() *zerolog.Event  { return l.z.Warn() }
func (l Logger) Error() *zerolog.Event { return l.z.Error() }
