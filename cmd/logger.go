/*
Copyright © 2025 Logicos Software

logger.go implements the logger passed into every component.

Each command handler constructs exactly one Logger and hands it (or a
component-scoped child of it) to the parameter store, the tool wrappers
and the production sequence. There is no package-level logging state:
verbosity is decided once at the CLI boundary and carried by the
instance.
*/
package cmd

import (
	"log/slog"
	"os"
)

// Logger wraps slog with the small surface the rest of the package needs.
// Log output goes to stderr so native tool output on stdout stays clean.
type Logger struct {
	logger  *slog.Logger
	verbose bool
}

// NewLogger creates a new logger instance. With verbose set, debug
// messages (including every native tool command line) are emitted.
func NewLogger(verbose bool) *Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger:  slog.New(handler),
		verbose: verbose,
	}
}

// WithComponent returns a child logger tagged with a component name,
// e.g. "gp" or "gids". The child shares the parent's verbosity.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		logger:  l.logger.With("component", name),
		verbose: l.verbose,
	}
}

// Verbose reports whether debug logging is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Info logs an informational message with optional key/value pairs.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Debug logs a debug message with optional key/value pairs.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Warn logs a warning message with optional key/value pairs.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}
