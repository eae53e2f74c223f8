package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Format represents the logging output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger wraps a slog.Logger with the selected format
type Logger struct {
	format Format
	level  *slog.LevelVar
	slog   *slog.Logger
}

var (
	mu            sync.RWMutex
	defaultLogger = newLogger(FormatText, os.Stderr, slog.LevelInfo)
)

func newLogger(format Format, w io.Writer, level slog.Level) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level)

	opts := &slog.HandlerOptions{Level: lv}
	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		format: format,
		level:  lv,
		slog:   slog.New(handler),
	}
}

// Setup replaces the global logger. Unknown formats fall back to text.
func Setup(format Format, level slog.Level, w io.Writer) {
	if format != FormatJSON {
		format = FormatText
	}
	l := newLogger(format, w, level)

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// ParseLevel converts a level name to slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the level of the current logger
func SetLevel(level slog.Level) {
	current().level.Set(level)
}

// GetFormat returns the current logging format
func GetFormat() Format {
	return current().format
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Debug logs a debug message for a component
func Debug(component, message string, args ...any) {
	current().slog.Debug(message, append([]any{"component", component}, args...)...)
}

// Info logs an info message for a component
func Info(component, message string, args ...any) {
	current().slog.Info(message, append([]any{"component", component}, args...)...)
}

// Warn logs a warning for a component
func Warn(component, message string, args ...any) {
	current().slog.Warn(message, append([]any{"component", component}, args...)...)
}

// Error logs an error message for a component
func Error(component, message string, err error, args ...any) {
	attrs := []any{"component", component}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	current().slog.Error(message, append(attrs, args...)...)
}
