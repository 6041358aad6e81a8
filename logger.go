package hugego

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with hugego-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithNodeCount adds a node count field to the logger.
func (l *Logger) WithNodeCount(count uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("nodes", count),
	}
}

// WithBytes adds a byte size field to the logger.
func (l *Logger) WithBytes(bytes int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("bytes", bytes),
	}
}

// WithPages adds a page count field to the logger.
func (l *Logger) WithPages(pages int) *Logger {
	return &Logger{
		Logger: l.Logger.With("pages", pages),
	}
}

// WithProperty adds a property name field to the logger.
func (l *Logger) WithProperty(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("property", name),
	}
}

// LogBuildStart logs the beginning of a store build.
func (l *Logger) LogBuildStart(ctx context.Context, concurrency int) {
	l.InfoContext(ctx, "store build started",
		"concurrency", concurrency,
	)
}

// LogIDMapBuilt logs a finished id map phase.
func (l *Logger) LogIDMapBuilt(ctx context.Context, nodeCount, duplicates uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "id map build failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "id map built",
			"nodes", nodeCount,
			"duplicates", duplicates,
		)
	}
}

// LogPropertyBuilt logs a remapped property column.
func (l *Logger) LogPropertyBuilt(ctx context.Context, name string, imported uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "property build failed",
			"property", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "property built",
			"property", name,
			"imported", imported,
		)
	}
}

// LogBuildComplete logs a sealed store.
func (l *Logger) LogBuildComplete(ctx context.Context, nodeCount uint64, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store build failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store build completed",
			"nodes", nodeCount,
			"bytes", bytes,
		)
	}
}

// LogClose logs the release of a store's memory.
func (l *Logger) LogClose(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store close failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "store closed",
			"bytes_released", bytes,
		)
	}
}
