package byteslice

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with column-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithColumn adds the column encoding and width to the logger.
func (l *Logger) WithColumn(typ ColumnType, bitWidth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("column_type", typ.String(), "bit_width", bitWidth),
	}
}

// WithBlock adds a block id field to the logger.
func (l *Logger) WithBlock(id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("block", id),
	}
}

// LogScan logs a column scan.
func (l *Logger) LogScan(ctx context.Context, cmp Comparator, opt Bitwise, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"comparator", cmp.String(),
			"bitwise", opt.String(),
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scan completed",
			"comparator", cmp.String(),
			"bitwise", opt.String(),
			"rows", rows,
		)
	}
}

// LogResize logs a column resize.
func (l *Logger) LogResize(ctx context.Context, from, to int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resize failed",
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "resize completed",
			"from", from,
			"to", to,
		)
	}
}

// LogLoad logs a bulk or file load.
func (l *Logger) LogLoad(ctx context.Context, source string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"source", source,
			"rows", rows,
		)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot "+op+" completed",
			"name", name,
			"bytes", bytes,
		)
	}
}
