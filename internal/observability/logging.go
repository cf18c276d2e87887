// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LoggingConfig defines how the global logger is built.
type LoggingConfig struct {
	Level  string
	Format string
	Output io.Writer
}

// InitLogging replaces GlobalLogger according to cfg and returns it.
func InitLogging(cfg LoggingConfig) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	GlobalLogger = &Logger{Logger: slog.New(handler)}
	return GlobalLogger
}

// ParseLevel maps a config string to a slog level, defaulting to info.
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

// StoreLogger provides structured logging for key-value slot operations.
type StoreLogger struct {
	backend string
	logger  *Logger
}

// NewStoreLogger creates a new StoreLogger for the given backend name.
func NewStoreLogger(backend string) *StoreLogger {
	return &StoreLogger{
		backend: backend,
		logger:  GlobalLogger,
	}
}

// LogRead logs a slot read at debug level.
func (l *StoreLogger) LogRead(ctx context.Context, slot string, found bool) {
	l.logger.DebugContext(ctx, "store read",
		slog.String("backend", l.backend),
		slog.String("slot", slot),
		slog.Bool("found", found),
	)
}

// LogWrite logs a slot write at debug level.
func (l *StoreLogger) LogWrite(ctx context.Context, slot string, size int) {
	l.logger.DebugContext(ctx, "store write",
		slog.String("backend", l.backend),
		slog.String("slot", slot),
		slog.Int("bytes", size),
	)
}

// LogFailure logs a swallowed storage failure.
func (l *StoreLogger) LogFailure(ctx context.Context, operation, slot string, err error) {
	l.logger.ErrorContext(ctx, "store "+operation+" error",
		slog.String("backend", l.backend),
		slog.String("slot", slot),
		slog.String("error", err.Error()),
	)
}
