package app

import (
	"io"
	"log/slog"

	"github.com/vk/hotbootgo/internal/logmirror"
)

// newLogger creates and configures a new slog.Logger instance wrapped in the
// bounded log mirror. It does not set the global logger, allowing for
// isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer, mirrorLines int) (*slog.Logger, *logmirror.Handler) {
	var level slog.Level
	switch levelStr {
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

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	mirror := logmirror.New(handler, mirrorLines)
	return slog.New(mirror), mirror
}
