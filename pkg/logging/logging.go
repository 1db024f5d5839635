// Package logging adapts zerolog to the bridge's diagnostic sink.
package logging

import (
	"github.com/rs/zerolog"

	"fsbridge/pkg/types"
)

// DefaultTag is the component name attached to every bridge log entry
const DefaultTag = "FileUtilsNative"

// Logger writes bridge diagnostics through a zerolog.Logger
type Logger struct {
	zl zerolog.Logger
}

// New returns a Logger that tags each entry with the given component.
// An empty component falls back to DefaultTag.
func New(zl zerolog.Logger, component string) *Logger {
	if component == "" {
		component = DefaultTag
	}
	return &Logger{zl: zl.With().Str("component", component).Logger()}
}

// Nop returns a Logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Info logs at info level
func (l *Logger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msgf(msg, args...)
}

// Error logs at error level
func (l *Logger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msgf(msg, args...)
}

var _ types.Logger = (*Logger)(nil)
