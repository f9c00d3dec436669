// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logger := logging.Setup(os.Stderr, "debug") // also installed as the slog default
//	logger := logging.New(os.Stderr, "warn")    // standalone logger
//
// Level names are debug, info, warn and error (default: info). A non-empty
// NO_COLOR environment variable disables colors.
//
// Colors are also disabled when the destination is not a terminal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup builds a logger like New and installs it as the slog default, so
// packages that log through slog.Default share its level and destination.
func Setup(w io.Writer, level string) *slog.Logger {
	logger := New(w, level)
	slog.SetDefault(logger)
	return logger
}

// New returns a tint logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(newHandler(w, ParseLevel(level)))
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
		NoColor:    !colorable(w),
	})
}

func colorable(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
