// Package logger provides structured logging for the agentcost TUI. Output
// goes to stderr so it does not interleave with the rendered screen.
package logger

import (
	"log/slog"
	"os"
)

// Logger is the global logger instance.
var Logger = newDefault()

func newDefault() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("AGENTCOST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
