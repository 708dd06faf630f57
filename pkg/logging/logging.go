// Package logging configures the process-wide structured logger.
//
// All packages receive a *slog.Logger rather than logging through a global,
// so tests can capture or silence output per component.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a text-format slog.Logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Default returns the standard logger for CLI runs: text output on stderr,
// level taken from the OBSTACK_LOG environment variable (debug, info, warn,
// error; default info).
func Default() *slog.Logger {
	return New(os.Stderr, LevelFromEnv())
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromEnv parses OBSTACK_LOG into a slog.Level, defaulting to info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("OBSTACK_LOG")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
