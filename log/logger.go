package log

import (
	"context"
	"strings"
)

type contextKey string

const loggerKey contextKey = "kbloader.logger"

var defaultLevel = LevelWarn

// SetDefaultLevel sets the level used by loggers created implicitly.
func SetDefaultLevel(level Level) {
	defaultLevel = level
}

// Logger is the logging surface used by loaders and the knowledge base. It
// mirrors slog so adapters for other libraries stay small.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that adds args to every record.
	With(args ...any) Logger
}

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the logger carried by ctx, or a new logger at the default level.
func Ctx(ctx context.Context) Logger {
	if ctx == nil {
		return New(defaultLevel)
	}
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return New(defaultLevel)
}

// LevelFromString converts a level name to a Level, falling back to the
// default level for unknown names.
func LevelFromString(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return defaultLevel
	}
}
