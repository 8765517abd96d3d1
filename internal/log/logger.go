// Package log builds the structured loggers used by the server and the CLI.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Project-Sylos/Canopy/internal/types"
)

// Formats understood by New.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// New creates a logger writing to stdout as configured.
func New(cfg types.LogConfig) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg.Format, cfg.Level)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = newPrettyHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level, INFO when unknown.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromRequest returns logger annotated with the chi request ID carried by ctx.
func FromRequest(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := middleware.GetReqID(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}

// Configure builds the logger for cfg and installs it as the slog default.
func Configure(cfg types.LogConfig) *slog.Logger {
	l := New(cfg)
	slog.SetDefault(l)
	return l
}
