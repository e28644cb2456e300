// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package retry provides retry policies for transport calls to the simulator's
// IPC channel.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	schederrors "github.com/wagomu-sim/elastisim-scheduler/pkg/errors"
)

// Policy decides whether and how long to wait before retrying a failed transport call.
type Policy interface {
	// ShouldRetry determines if a call should be retried given the error it returned.
	ShouldRetry(ctx context.Context, err error, attempt int) bool

	// WaitTime returns the wait time before the next retry.
	WaitTime(attempt int) time.Duration

	// MaxRetries returns the maximum number of retries.
	MaxRetries() int
}

// ExponentialBackoff implements exponential backoff with jitter for retryable
// transport errors, bounding how long a caller waits between attempts.
type ExponentialBackoff struct {
	maxRetries    int
	minWaitTime   time.Duration
	maxWaitTime   time.Duration
	backoffFactor float64
	jitter        bool
}

// NewExponentialBackoff creates a backoff policy with sensible scheduler defaults.
func NewExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		maxRetries:    3,
		minWaitTime:   100 * time.Millisecond,
		maxWaitTime:   5 * time.Second,
		backoffFactor: 2.0,
		jitter:        true,
	}
}

func (e *ExponentialBackoff) WithMaxRetries(maxRetries int) *ExponentialBackoff {
	e.maxRetries = maxRetries
	return e
}

func (e *ExponentialBackoff) WithMinWaitTime(minWaitTime time.Duration) *ExponentialBackoff {
	e.minWaitTime = minWaitTime
	return e
}

func (e *ExponentialBackoff) WithMaxWaitTime(maxWaitTime time.Duration) *ExponentialBackoff {
	e.maxWaitTime = maxWaitTime
	return e
}

func (e *ExponentialBackoff) WithBackoffFactor(backoffFactor float64) *ExponentialBackoff {
	e.backoffFactor = backoffFactor
	return e
}

func (e *ExponentialBackoff) WithJitter(jitter bool) *ExponentialBackoff {
	e.jitter = jitter
	return e
}

// ShouldRetry retries while attempts remain, the context is live, and the error is
// classified as retryable (transport timeout/closed, per pkg/errors).
func (e *ExponentialBackoff) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= e.maxRetries {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	default:
	}
	if err == nil {
		return false
	}
	return schederrors.IsRetryable(schederrors.WrapTransportError(err))
}

func (e *ExponentialBackoff) WaitTime(attempt int) time.Duration {
	if attempt <= 0 {
		return e.minWaitTime
	}

	waitTime := time.Duration(float64(e.minWaitTime) * math.Pow(e.backoffFactor, float64(attempt-1)))
	if waitTime > e.maxWaitTime {
		waitTime = e.maxWaitTime
	}

	if e.jitter {
		jitterAmount := time.Duration(rand.Float64() * float64(waitTime) * 0.1)
		waitTime += jitterAmount
	}

	return waitTime
}

func (e *ExponentialBackoff) MaxRetries() int {
	return e.maxRetries
}

// NoRetry never retries; useful for a replay/fixture transport in tests.
type NoRetry struct{}

func NewNoRetry() *NoRetry { return &NoRetry{} }

func (n *NoRetry) ShouldRetry(ctx context.Context, err error, attempt int) bool { return false }
func (n *NoRetry) WaitTime(attempt int) time.Duration                          { return 0 }
func (n *NoRetry) MaxRetries() int                                            { return 0 }
