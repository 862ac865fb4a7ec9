package dcbgo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/dcbgo/format"
)

// Logger wraps slog.Logger with dcbgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRecord adds record id and GUID fields to the logger.
func (l *Logger) WithRecord(id uint32, guid format.GUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("record", id, "guid", guid.String()),
	}
}

// WithStruct adds a struct name field to the logger.
func (l *Logger) WithStruct(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("struct", name),
	}
}

// LogOpen logs the outcome of opening a database.
func (l *Logger) LogOpen(ctx context.Context, records, structs, warnings int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"error", err,
		)
		return
	}
	if warnings > 0 {
		l.WarnContext(ctx, "open completed with warnings",
			"records", records,
			"structs", structs,
			"warnings", warnings,
			"duration", duration,
		)
	} else {
		l.InfoContext(ctx, "open completed",
			"records", records,
			"structs", structs,
			"duration", duration,
		)
	}
}

// LogLoad logs a record load.
func (l *Logger) LogLoad(ctx context.Context, id uint32, cacheHit bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"record", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"record", id,
			"cache_hit", cacheHit,
		)
	}
}

// LogUnload logs an unload operation.
func (l *Logger) LogUnload(ctx context.Context, records int) {
	l.DebugContext(ctx, "unloaded",
		"records", records,
	)
}

// LogEager logs an eager materialization.
func (l *Logger) LogEager(ctx context.Context, loaded, failed int, duration time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "eager materialization completed with failures",
			"loaded", loaded,
			"failed", failed,
			"duration", duration,
		)
	} else {
		l.InfoContext(ctx, "eager materialization completed",
			"loaded", loaded,
			"duration", duration,
		)
	}
}
