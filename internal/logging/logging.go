package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New builds a text slog.Logger writing to w at the named level. Unknown
// levels fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Component returns a child logger tagged with the component name. A nil
// parent yields slog.Default.
func Component(parent *slog.Logger, name string) *slog.Logger {
	if parent == nil {
		parent = slog.Default()
	}
	return parent.With("component", name)
}

// Schema returns a logger for schema management.
func Schema(parent *slog.Logger) *slog.Logger {
	return Component(parent, "schema")
}

// Store returns a logger for repository operations.
func Store(parent *slog.Logger) *slog.Logger {
	return Component(parent, "store")
}

// CLI returns a logger for command line operations.
func CLI(parent *slog.Logger) *slog.Logger {
	return Component(parent, "cli")
}
