package factormethods

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with merge-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithInput adds the input location to the logger.
func (l *Logger) WithInput(input string) *Logger {
	return &Logger{
		Logger: l.Logger.With("input", input),
	}
}

// WithWorkers adds the worker count to the logger.
func (l *Logger) WithWorkers(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("workers", n),
	}
}

// LogRead logs the ingestion of the relation file.
func (l *Logger) LogRead(ctx context.Context, rows, cols int, weight int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reading relations failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "relations read",
			"rows", rows,
			"cols", cols,
			"weight", weight,
		)
	}
}

// LogReduce logs the outcome of a reduction.
func (l *Logger) LogReduce(ctx context.Context, rep *Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reduction failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "reduction completed",
		"N", rep.Rows,
		"ncols", rep.Cols,
		"excess", rep.Excess(),
		"W", rep.Weight,
		"history_lines", rep.HistoryLines,
		"history_checksum", rep.HistoryChecksum,
		"elapsed", rep.Elapsed,
	)
}
