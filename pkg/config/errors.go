// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	// ErrMissingIPCURL is returned when no IPC channel address is configured.
	ErrMissingIPCURL = errors.New("ipc url is required")

	// ErrInvalidTimeout is returned when the timeout is invalid.
	ErrInvalidTimeout = errors.New("timeout must be greater than 0")

	// ErrInvalidMaxRetries is returned when max retries is invalid.
	ErrInvalidMaxRetries = errors.New("max retries must be greater than or equal to 0")

	// ErrMissingVariant is returned when no scheduling variant is configured.
	ErrMissingVariant = errors.New("variant is required")
)
