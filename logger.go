package campus

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with campus-specific context.
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

// WithID adds an ID field to the logger (useful for tagging operations).
func (l *Logger) WithID(id int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, id int64, dimension int, err error) {
	if err == nil && !l.Enabled(ctx, slog.LevelDebug) {
		return
	}

	log := l.WithID(id).WithDimension(dimension)
	if err != nil {
		log.ErrorContext(ctx, "insert failed", "error", err)
	} else {
		log.DebugContext(ctx, "insert completed")
	}
}

// LogBatchInsert logs a batch insert operation.
func (l *Logger) LogBatchInsert(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch insert completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch insert completed",
			"count", count,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, nodeNum, ef, resultsFound int, err error) {
	if err == nil && !l.Enabled(ctx, slog.LevelDebug) {
		return
	}

	log := l.WithK(k)
	if err != nil {
		log.ErrorContext(ctx, "search failed",
			"node_num", nodeNum,
			"ef", ef,
			"error", err,
		)
	} else {
		log.DebugContext(ctx, "search completed",
			"node_num", nodeNum,
			"ef", ef,
			"results", resultsFound,
		)
	}
}

// LogSweep logs a sweep of archived nodes.
func (l *Logger) LogSweep(ctx context.Context, removed int, duration time.Duration) {
	if removed == 0 {
		return
	}
	l.InfoContext(ctx, "swept archived nodes",
		"removed", removed,
		"duration", duration,
	)
}

// LogStructural logs a failed invariant check.
func (l *Logger) LogStructural(ctx context.Context, err error) {
	l.ErrorContext(ctx, "graph invariant check failed",
		"error", err,
	)
}
