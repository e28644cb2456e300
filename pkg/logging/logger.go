// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package logging provides structured logging for the scheduler.
package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
	"unicode"
)

// ctxKey is an unexported type for context keys this package defines, avoiding
// collisions with keys other packages might store under the same string.
type ctxKey string

const (
	ctxKeySession ctxKey = "session_id"
	ctxKeyTick    ctxKey = "tick"
	ctxKeyVariant ctxKey = "variant"
)

// WithSessionID returns a context carrying a session identifier for WithContext to pick up.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySession, id)
}

// WithTick returns a context carrying a tick sequence number for WithContext to pick up.
func WithTick(ctx context.Context, tick int64) context.Context {
	return context.WithValue(ctx, ctxKeyTick, tick)
}

// WithVariant returns a context carrying the active scheduling variant name.
func WithVariant(ctx context.Context, variant string) context.Context {
	return context.WithValue(ctx, ctxKeyVariant, variant)
}

// Logger is the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// slogLogger wraps slog.Logger to implement our Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// NewLogger creates a new logger with the specified configuration.
func NewLogger(config *Config) Logger {
	if config == nil {
		config = DefaultConfig()
	}

	opts := &slog.HandlerOptions{
		Level: config.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	logger := slog.New(handler).With(
		"service", "elastisim-scheduler",
		"variant", config.Variant,
	)

	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, sanitizeFields(args)...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, sanitizeFields(args)...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, sanitizeFields(args)...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, sanitizeFields(args)...) }

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(sanitizeFields(args)...)}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	attrs := make([]any, 0, 6)
	if sessionID, ok := ctx.Value(ctxKeySession).(string); ok {
		attrs = append(attrs, "session_id", sessionID)
	}
	if tick, ok := ctx.Value(ctxKeyTick).(int64); ok {
		attrs = append(attrs, "tick", tick)
	}
	if variant, ok := ctx.Value(ctxKeyVariant).(string); ok {
		attrs = append(attrs, "variant", variant)
	}
	if len(attrs) > 0 {
		return l.With(attrs...)
	}
	return l
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level.
	Level slog.Level

	// Format is the output format (text or json).
	Format Format

	// Output is where logs are written (default: os.Stdout).
	Output *os.File

	// Variant is the scheduling variant name to include in every log line.
	Variant string
}

// Format represents the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// DefaultConfig returns a default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:   slog.LevelInfo,
		Format:  FormatText,
		Output:  os.Stdout,
		Variant: "unknown",
	}
}

// sanitizeLogValue strips control characters from string values to prevent log
// injection via job/node identifiers or Arguments the simulator supplies.
func sanitizeLogValue(value any) any {
	if str, ok := value.(string); ok {
		sanitized := strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			if unicode.IsControl(r) && !unicode.IsSpace(r) {
				return -1
			}
			return r
		}, str)
		return sanitized
	}
	return value
}

func sanitizeFields(fields []any) []any {
	sanitized := make([]any, len(fields))
	for i, field := range fields {
		sanitized[i] = sanitizeLogValue(field)
	}
	return sanitized
}

// LogTick returns logger with the standard per-tick fields (variant, caller) attached;
// it writes no log line itself.
func LogTick(logger Logger, variant string, fields ...any) Logger {
	_, file, line, _ := runtime.Caller(1)
	base := []any{
		"variant", sanitizeLogValue(variant),
		"caller", fmt.Sprintf("%s:%d", file, line),
	}
	return logger.With(append(base, sanitizeFields(fields)...)...)
}

// LogDuration logs the duration of an operation.
func LogDuration(logger Logger, start time.Time, operation string) {
	duration := time.Since(start)
	logger.Info("operation completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String(),
	)
}

// LogError logs an error with context.
func LogError(logger Logger, err error, operation string, fields ...any) {
	if err == nil {
		return
	}
	base := []any{
		"operation", operation,
		"error", err.Error(),
		"error_type", getErrorType(err),
	}
	logger.Error("operation failed", append(base, sanitizeFields(fields)...)...)
}

func getErrorType(err error) string {
	if err == nil {
		return ""
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return "PathError"
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return "LinkError"
	}
	var syscallErr *os.SyscallError
	if errors.As(err, &syscallErr) {
		return "SyscallError"
	}
	return fmt.Sprintf("%T", err)
}

// NoOpLogger discards all log messages; useful as a zero-value-safe default.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, args ...any)          {}
func (NoOpLogger) Info(msg string, args ...any)           {}
func (NoOpLogger) Warn(msg string, args ...any)           {}
func (NoOpLogger) Error(msg string, args ...any)          {}
func (NoOpLogger) With(args ...any) Logger                { return NoOpLogger{} }
func (NoOpLogger) WithContext(ctx context.Context) Logger { return NoOpLogger{} }
