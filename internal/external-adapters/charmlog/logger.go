// Package charmlog adapts github.com/charmbracelet/log to the domain Logger contract.
package charmlog

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jwuxan/homebrew-lofetch/internal/domain/interfaces"
)

// Logger implements interfaces.Logger on top of a charmbracelet logger
type Logger struct {
	l *log.Logger
}

// New creates a logger writing to w at the given level ("debug", "info", "warn", "error")
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := log.NewWithOptions(w, log.Options{
		Prefix: "tap",
		Level:  lvl,
	})

	return &Logger{l: l}, nil
}

// Debug logs debug-level messages
func (c *Logger) Debug(msg string, fields ...interfaces.Field) {
	c.l.Debug(msg, keyvals(fields)...)
}

// Info logs informational messages
func (c *Logger) Info(msg string, fields ...interfaces.Field) {
	c.l.Info(msg, keyvals(fields)...)
}

// Warn logs warning messages
func (c *Logger) Warn(msg string, fields ...interfaces.Field) {
	c.l.Warn(msg, keyvals(fields)...)
}

// Error logs error messages
func (c *Logger) Error(msg string, fields ...interfaces.Field) {
	c.l.Error(msg, keyvals(fields)...)
}

func keyvals(fields []interfaces.Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
