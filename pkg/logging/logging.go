// Package logging wraps go-logr/logr so the rest of this module can log
// step-by-step parse and scan progress without depending on any particular
// logging backend. Each package keeps its own named Logger, built with
// NewLogger; by default (DefaultLogger) nothing is logged.
package logging

import (
	"github.com/go-logr/logr"
)

const (
	LEVEL_INFO  = 0
	LEVEL_DEBUG = 1
	LEVEL_TRACE = 2
)

// NewLogger wraps an existing logr.Logger. A Logger with no sink discards
// everything written to it.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a Logger that discards everything, the default used
// by each package until its SetLogger is called.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger wraps a logr.Logger with the fixed verbosity levels this module
// uses throughout box, payload, and discovery code.
type Logger struct {
	log logr.Logger
}

// Named returns a Logger that tags every subsequent line with name, nesting
// under any existing name (e.g. "box.playready").
func (l *Logger) Named(name string) *Logger {
	return &Logger{log: l.log.WithName(name)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_TRACE).Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
