package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger provides verbose output for layout and generation decisions.
type Logger struct {
	enabled bool
	out     *slog.Logger
}

// NewLogger creates a new logger instance writing to stderr.
func NewLogger(enabled bool) *Logger {
	l := &Logger{enabled: enabled}
	l.SetOutput(os.Stderr)
	return l
}

// SetOutput sets the output writer for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.out = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})).With(slog.String("component", "lexgen"))
}

// Log prints a formatted message if verbose mode is enabled.
func (l *Logger) Log(format string, args ...any) {
	if l.enabled {
		l.out.Info(fmt.Sprintf(format, args...))
	}
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	if l.enabled {
		l.out.Info("section", slog.String("name", name))
	}
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
