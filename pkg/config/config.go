// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package config loads scheduler configuration from environment variables and
// provides validated defaults.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
)

// Config holds configuration for a scheduler process.
type Config struct {
	// IPCURL is the address of the simulator's IPC channel, e.g. "ipc:///tmp/elastisim.ipc".
	IPCURL string

	// Timeout bounds a single request/reply round-trip over the IPC channel.
	Timeout time.Duration

	// MaxRetries is the maximum number of retries for a retryable transport error.
	MaxRetries int

	// RetryWaitMin and RetryWaitMax bound the exponential backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Variant selects the registered scheduling variant to run.
	Variant string

	// EventLogPath is where the CSV event trace is written.
	EventLogPath string

	// LogLevel and LogFormat configure the structured logger.
	LogLevel  slog.Level
	LogFormat logging.Format

	// Debug enables verbose per-tick state-dump logging.
	Debug bool
}

const DefaultIPCURL = "ipc:///tmp/elastisim.ipc"

// NewDefault creates a configuration with the scheduler's default values.
func NewDefault() *Config {
	return &Config{
		IPCURL:       getEnvOrDefault("ELASTISIM_IPC_URL", DefaultIPCURL),
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		Variant:      getEnvOrDefault("ELASTISIM_VARIANT", "pref_common_pool"),
		EventLogPath: getEnvOrDefault("ELASTISIM_EVENT_LOG", eventlog.DefaultPath),
		LogLevel:     slog.LevelInfo,
		LogFormat:    logging.FormatText,
		Debug:        getEnvBoolOrDefault("ELASTISIM_DEBUG", false),
	}
}

// Load overlays environment variables onto an existing configuration, leaving fields
// untouched when their variable is unset.
func (c *Config) Load() {
	if url := os.Getenv("ELASTISIM_IPC_URL"); url != "" {
		c.IPCURL = url
	}
	if timeout := os.Getenv("ELASTISIM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Timeout = d
		}
	}
	if maxRetries := os.Getenv("ELASTISIM_MAX_RETRIES"); maxRetries != "" {
		if i, err := strconv.Atoi(maxRetries); err == nil {
			c.MaxRetries = i
		}
	}
	if variant := os.Getenv("ELASTISIM_VARIANT"); variant != "" {
		c.Variant = variant
	}
	if path := os.Getenv("ELASTISIM_EVENT_LOG"); path != "" {
		c.EventLogPath = path
	}
	if format := os.Getenv("ELASTISIM_LOG_FORMAT"); format == string(logging.FormatJSON) {
		c.LogFormat = logging.FormatJSON
	}
	c.Debug = getEnvBoolOrDefault("ELASTISIM_DEBUG", c.Debug)
}

// Validate reports a descriptive error for any field that would make the scheduler
// unable to start.
func (c *Config) Validate() error {
	if c.IPCURL == "" {
		return ErrMissingIPCURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.Variant == "" {
		return ErrMissingVariant
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
