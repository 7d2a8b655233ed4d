// Package log configures the process-wide slog logger for the dealflow
// services and hands out per-module child loggers.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler writing to stderr at the given level.
// Unrecognized levels fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns a logger whose lines carry the module name, so
// engine, services, and command output stay distinguishable.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
