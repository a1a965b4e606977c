package app

import (
	"io"
	"log/slog"
)

// newLogger builds the slog.Logger one build runs with. The global default
// logger is left untouched so tests can construct isolated instances.
// Builds log JSON by default; "text" is the opt-in for interactive use.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "text" {
		return slog.New(slog.NewTextHandler(outW, opts))
	}
	return slog.New(slog.NewJSONHandler(outW, opts))
}
