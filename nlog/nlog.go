// Package nlog carries the ambient logging and process-wide verbosity
// state that every other package in this module uses, in the teacher's
// plain log/slog style (see e.g. simulation.go, entity.go in the example
// engine: slog.Error/Warn with structured key-value pairs, no custom
// logger type).
package nlog

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Level mirrors spec.md §6.4's verbosity levels: Warn and Debug output
// is gated on it. The mt package's progress display does not read it.
type Level int32

const (
	Quiet Level = iota
	Info
	Debug
)

var verbosity atomic.Int32

func init() { verbosity.Store(int32(Info)) }

// SetVerbosity sets the process-wide verbosity level.
func SetVerbosity(l Level) { verbosity.Store(int32(l)) }

// Verbosity returns the process-wide verbosity level.
func Verbosity() Level { return Level(verbosity.Load()) }

// Warn logs a warning-level message with structured args, active at
// Info verbosity or higher.
func Warn(msg string, args ...any) {
	if Verbosity() >= Info {
		slog.Warn(msg, args...)
	}
}

// Debug logs a debug-level message, active only at Debug verbosity.
func Debug(msg string, args ...any) {
	if Verbosity() >= Debug {
		slog.Debug(msg, args...)
	}
}

// Fatal logs a fatal-for-this-task condition. Per spec.md §7 / §9, this
// never terminates the process: callers still return their own error.
func Fatal(msg string, args ...any) { slog.Error(msg, args...) }

var initOnce sync.Once

// Init performs the single idempotent process-wide setup described in
// spec.md §6.4: it runs the given opts, in order, exactly once. Safe to
// call from multiple goroutines or multiple times; only the first call
// has effect.
func Init(opts ...func()) {
	initOnce.Do(func() {
		for _, opt := range opts {
			opt()
		}
	})
}
