// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("with config", func(t *testing.T) {
		config := &Config{
			Level:   slog.LevelDebug,
			Format:  FormatJSON,
			Output:  os.Stdout,
			Variant: "min_common_pool",
		}

		logger := NewLogger(config)
		require.NotNil(t, logger)

		sl, ok := logger.(*slogLogger)
		assert.True(t, ok)
		assert.NotNil(t, sl.logger)
	})

	t.Run("with nil config", func(t *testing.T) {
		logger := NewLogger(nil)
		require.NotNil(t, logger)

		sl, ok := logger.(*slogLogger)
		assert.True(t, ok)
		assert.NotNil(t, sl.logger)
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	require.NotNil(t, config)
	assert.Equal(t, slog.LevelInfo, config.Level)
	assert.Equal(t, FormatText, config.Format)
	assert.Equal(t, os.Stdout, config.Output)
	assert.Equal(t, "unknown", config.Variant)
}

func TestSlogLogger_LogMethods(t *testing.T) {
	logger := NewLogger(&Config{Level: slog.LevelDebug, Format: FormatJSON, Output: os.Stdout})

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
	logger.Error("error message", "key", "value")
}

func TestSlogLogger_With(t *testing.T) {
	logger := NewLogger(&Config{Level: slog.LevelDebug, Format: FormatText, Output: os.Stdout})

	newLogger := logger.With("component", "admission", "job_id", 123)

	assert.NotEqual(t, logger, newLogger)
	assert.IsType(t, &slogLogger{}, newLogger)
}

func TestSlogLogger_WithContext(t *testing.T) {
	logger := NewLogger(&Config{Level: slog.LevelDebug, Format: FormatText, Output: os.Stdout})

	t.Run("context with values", func(t *testing.T) {
		ctx := WithSessionID(context.Background(), "sess-1")
		ctx = WithTick(ctx, 42)
		ctx = WithVariant(ctx, "average_steal_agreement")

		contextLogger := logger.WithContext(ctx)

		assert.NotEqual(t, logger, contextLogger)
		assert.IsType(t, &slogLogger{}, contextLogger)
	})

	t.Run("context without values", func(t *testing.T) {
		ctx := context.Background()

		contextLogger := logger.WithContext(ctx)

		assert.Equal(t, logger, contextLogger)
	})

	t.Run("context with one value", func(t *testing.T) {
		ctx := WithTick(context.Background(), 7)

		contextLogger := logger.WithContext(ctx)

		assert.NotEqual(t, logger, contextLogger)
		assert.IsType(t, &slogLogger{}, contextLogger)
	})
}

func TestLogTick(t *testing.T) {
	logger := NewLogger(&Config{Level: slog.LevelDebug, Format: FormatText, Output: os.Stdout})

	tickLogger := LogTick(logger, "pref_common_pool", "session_id", "sess-1")

	assert.NotEqual(t, logger, tickLogger)
	assert.IsType(t, &slogLogger{}, tickLogger)
}

func TestLogDuration(t *testing.T) {
	logger := NewLogger(&Config{Level: slog.LevelDebug, Format: FormatText, Output: os.Stdout})

	start := time.Now().Add(-100 * time.Millisecond)

	LogDuration(logger, start, "driver.Tick")
}

func TestLogError(t *testing.T) {
	logger := NewLogger(&Config{Level: slog.LevelDebug, Format: FormatText, Output: os.Stdout})

	t.Run("with error", func(t *testing.T) {
		err := errors.New("test error")
		LogError(logger, err, "admission.Run", "extra", "field")
	})

	t.Run("with nil error", func(t *testing.T) {
		LogError(logger, nil, "admission.Run", "extra", "field")
	})
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "generic error", err: errors.New("test error"), expected: "*errors.errorString"},
		{name: "path error", err: &os.PathError{Op: "open", Path: "/test", Err: errors.New("not found")}, expected: "PathError"},
		{name: "link error", err: &os.LinkError{Op: "link", Old: "/old", New: "/new", Err: errors.New("failed")}, expected: "LinkError"},
		{name: "syscall error", err: &os.SyscallError{Syscall: "test", Err: errors.New("failed")}, expected: "SyscallError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getErrorType(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NoOpLogger{}

	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")

	withLogger := logger.With("key", "value")
	assert.Equal(t, NoOpLogger{}, withLogger)

	contextLogger := logger.WithContext(context.Background())
	assert.Equal(t, NoOpLogger{}, contextLogger)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, Format("text"), FormatText)
	assert.Equal(t, Format("json"), FormatJSON)
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*slogLogger)(nil)
	var _ Logger = NoOpLogger{}
}

func TestLoggerOutput(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer

		handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger := &slogLogger{
			logger: slog.New(handler).With("service", "elastisim-scheduler", "variant", "test"),
		}

		logger.Info("test message", "key", "value")

		output := buf.String()
		assert.Contains(t, output, "test message")
		assert.Contains(t, output, "key=value")
		assert.Contains(t, output, "service=elastisim-scheduler")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer

		handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger := &slogLogger{
			logger: slog.New(handler).With("service", "elastisim-scheduler", "variant", "test"),
		}

		logger.Info("test message", "key", "value")

		output := buf.String()
		assert.True(t, json.Valid([]byte(output)), "output should be valid JSON")
		assert.Contains(t, output, "test message")
		assert.Contains(t, output, "\"key\":\"value\"")
		assert.Contains(t, output, "\"service\":\"elastisim-scheduler\"")
	})
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name        string
		level       slog.Level
		shouldLog   []string
		shouldntLog []string
	}{
		{name: "debug level", level: slog.LevelDebug, shouldLog: []string{"debug", "info", "warn", "error"}},
		{name: "info level", level: slog.LevelInfo, shouldLog: []string{"info", "warn", "error"}, shouldntLog: []string{"debug"}},
		{name: "warn level", level: slog.LevelWarn, shouldLog: []string{"warn", "error"}, shouldntLog: []string{"debug", "info"}},
		{name: "error level", level: slog.LevelError, shouldLog: []string{"error"}, shouldntLog: []string{"debug", "info", "warn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.level})
			logger := &slogLogger{logger: slog.New(handler)}

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message")

			output := buf.String()

			for _, should := range tt.shouldLog {
				assert.Contains(t, output, should+" message", "should log %s at level %v", should, tt.level)
			}
			for _, shouldnt := range tt.shouldntLog {
				assert.NotContains(t, output, shouldnt+" message", "should not log %s at level %v", shouldnt, tt.level)
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	assert.Equal(t, "clean", sanitizeLogValue("clean"))
	assert.Equal(t, "a b c", sanitizeLogValue("a\nb\rc"))
	assert.Equal(t, 42, sanitizeLogValue(42))
}
