// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package errors

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
)

// WrapTransportError classifies an error surfaced by the IPC channel into a
// SchedulerError, so callers can decide retry/abort behavior on Category alone.
func WrapTransportError(err error) *SchedulerError {
	if err == nil {
		return nil
	}

	var schedErr *SchedulerError
	if stderrors.As(err, &schedErr) {
		return schedErr
	}

	if stderrors.Is(err, context.Canceled) {
		return Wrap(CodeContextCanceled, "operation was canceled", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return Wrap(CodeDeadlineExceeded, "operation timed out", err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return Wrap(CodeTransportTimeout, "transport operation timed out", err)
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "closed"):
		return Wrap(CodeTransportClosed, "transport connection closed", err)
	case strings.Contains(errStr, "connection reset"), strings.Contains(errStr, "broken pipe"):
		return Wrap(CodeTransportClosed, "transport connection reset", err)
	case strings.Contains(errStr, "timeout"):
		return Wrap(CodeTransportTimeout, "transport timeout", err)
	}

	return Wrap(CodeUnknown, err.Error(), err)
}

// NewBoundsError reports a violated [NumNodesMin, NumNodesMax] style invariant.
func NewBoundsError(field string, value int, detail string) *SchedulerError {
	err := Newf(CodeBoundsViolated, "%s=%d violates bound invariant", field, value)
	err.Details = detail
	return err
}

// NewValidationErrorf creates a validation error with a formatted message.
func NewValidationErrorf(field string, format string, args ...any) *SchedulerError {
	err := Newf(CodeValidationFailed, format, args...)
	err.Details = "field: " + field
	return err
}

// NewInsufficientNodesError reports that a plan could not be satisfied from the
// available free-node pool.
func NewInsufficientNodesError(jobID int, wanted, available int) *SchedulerError {
	err := Newf(CodeInsufficientNodes, "job %d needs %d nodes, %d available", jobID, wanted, available)
	return err
}

// NewUnknownVariantError reports a variant name that was not registered.
func NewUnknownVariantError(name string) *SchedulerError {
	return Newf(CodeUnknownVariant, "unknown variant %q", name)
}

// IsRetryable reports whether err (or a wrapped SchedulerError within it) may
// succeed if the caller tries again.
func IsRetryable(err error) bool {
	var schedErr *SchedulerError
	if stderrors.As(err, &schedErr) {
		return schedErr.IsRetryable()
	}
	return false
}

// GetCode extracts the Code from err, or CodeUnknown if err does not wrap a SchedulerError.
func GetCode(err error) Code {
	var schedErr *SchedulerError
	if stderrors.As(err, &schedErr) {
		return schedErr.Code
	}
	return CodeUnknown
}

// IsValidation reports whether err is a validation-category SchedulerError.
func IsValidation(err error) bool {
	var schedErr *SchedulerError
	if stderrors.As(err, &schedErr) {
		return schedErr.Category == CategoryValidation
	}
	return false
}
