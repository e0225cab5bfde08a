// Package logging provides the structured logger shared by the master pool
// and the slave agent.
package logging

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is a leveled, structured logger. Call sites pass alternating
// key/value pairs, matching the go-kit/log convention used throughout the
// pool and the agent.
type Logger struct {
	base log.Logger
}

// New builds a Logger that writes logfmt lines to stderr, tagged with a role
// ("master" or "slave") and a timestamp.
func New(role string) *Logger {
	base := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	base = log.With(base, "ts", log.DefaultTimestampUTC, "role", role)
	return &Logger{base: base}
}

// Info logs at info level.
func (l *Logger) Info(keyvals ...interface{}) {
	_ = level.Info(l.base).Log(keyvals...)
}

// Warn logs at warn level.
func (l *Logger) Warn(keyvals ...interface{}) {
	_ = level.Warn(l.base).Log(keyvals...)
}

// Error logs at error level.
func (l *Logger) Error(keyvals ...interface{}) {
	_ = level.Error(l.base).Log(keyvals...)
}
