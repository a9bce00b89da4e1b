package app

import (
	"io"
	"log/slog"
)

// newLogger builds the logger selected by the CLI flags. The instance is
// handed to the App rather than installed as the process default, so tests
// can run several apps with isolated log sinks.
func newLogger(level, format string, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(level)}
	if format == "text" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// logLevel maps the already-validated CLI level string; anything else falls
// back to info rather than failing mid-startup.
func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
