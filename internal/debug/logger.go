// Package debug holds the process-wide slog logger used by drivers and the
// dbkit command.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	// logger is the global logger instance
	logger *slog.Logger
	// level is shared by every handler Init installs
	level = new(slog.LevelVar)
	// enabled indicates if debug logging is enabled
	enabled bool
	// mu protects the logger and enabled flag
	mu sync.RWMutex
)

func init() {
	Init(false)
}

// Init installs a text logger on stderr. With enable set, debug records are
// written; otherwise only warnings and errors are.
func Init(enable bool) {
	InitWriter(os.Stderr, enable, false)
}

// InitWriter installs a logger writing to w, as JSON when json is set.
func InitWriter(w io.Writer, enable, json bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if enable {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger = slog.New(handler)
}

// SetLevelFromString changes the level of the current logger. Valid values
// are "debug", "info", "warn" and "error"; anything else is ignored.
func SetLevelFromString(name string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.Set(l)

	mu.Lock()
	enabled = l <= slog.LevelDebug
	mu.Unlock()
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
