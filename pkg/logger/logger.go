/*
logger implements the llamachat Logger interface on top of log/slog
*/
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Logger wraps slog.Logger
type Logger struct {
	*slog.Logger
}

// Format selects the output of the logger
type Format int

var _ llamachat.Logger = (*Logger)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Text Format = iota
	JSON
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a logger which writes to w at the given level, which is one
// of "debug", "info", "warn" or "error". Unknown levels are "info".
func New(w io.Writer, format Format, level string) *Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	switch format {
	case JSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{slog.New(handler)}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ParseLevel returns the slog level for a level name
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

func (l *Logger) Print(ctx context.Context, args ...any) {
	l.Logger.InfoContext(ctx, fmt.Sprint(args...))
}

func (l *Logger) Printf(ctx context.Context, format string, args ...any) {
	l.Logger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(ctx context.Context, args ...any) {
	if l.Logger.Enabled(ctx, slog.LevelDebug) {
		l.Logger.DebugContext(ctx, fmt.Sprint(args...))
	}
}

func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	if l.Logger.Enabled(ctx, slog.LevelDebug) {
		l.Logger.DebugContext(ctx, fmt.Sprintf(format, args...))
	}
}
