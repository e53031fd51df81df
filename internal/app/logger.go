package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application's logger without touching the global one.
// Unknown levels fall back to info and unknown formats to text. At debug
// level records carry their source location.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	switch formatStr {
	case "json":
		return slog.New(slog.NewJSONHandler(outW, opts))
	default:
		return slog.New(slog.NewTextHandler(outW, opts))
	}
}
