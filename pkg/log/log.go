// Package log configures structured logging for the desk-display binaries.
package log

import (
	"io"
	"log/slog"
	"os"
)

// New builds a text logger writing to w at the named level. Unknown level
// names fall back to info.
func New(w io.Writer, logLevel string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))
}

// Setup installs the process-wide default logger on stderr at the
// requested level.
func Setup(logLevel string) {
	slog.SetDefault(New(os.Stderr, logLevel))
}

// WithModule returns a logger tagged with the component name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

func parseLevel(logLevel string) slog.Level {
	switch logLevel {
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
