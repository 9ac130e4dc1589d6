package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvLevel names the environment variable holding the log level
const EnvLevel = "FILTERLINES_LOG"

// ParseLevel maps a level name to a slog level. Unknown names fall back to
// info and report ok=false.
func ParseLevel(s string) (l slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug, true
	case "info", "inf", "":
		return slog.LevelInfo, true
	case "warn", "wrn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New returns a text logger writing to w
func New(w io.Writer, level slog.Level) *slog.Logger {
	// slog defaults to logging in the order of time, level, msg, and other attributes.
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InitLogger points the default slog logger at the file at path. The
// returned closer releases the file.
func InitLogger(path, level string) (io.Closer, error) {
	loglevel, ok := ParseLevel(level)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	slog.SetDefault(New(logFile, loglevel))
	if !ok {
		slog.Warn("Unknown log level, using info", "level", level)
	}
	return logFile, nil
}
