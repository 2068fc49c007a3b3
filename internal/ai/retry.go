package ai

import (
	"context"
	"errors"
	"strings"
	"time"
)

// timeSleep is a wrapper for time.After that can be overridden in tests.
//
//nolint:gochecknoglobals // Required for test mocking
var timeSleep = func(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// isRetryable determines whether an error should be retried.
// Context, auth, parse, and missing-binary errors are final; everything
// else (network failures, rate limits, overloaded backends) is treated as
// transient.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "authentication") ||
		strings.Contains(errStr, "api key") {
		return false
	}
	if strings.Contains(errStr, "failed to parse json") ||
		strings.Contains(errStr, "empty response") {
		return false
	}
	if strings.Contains(errStr, "not found in path") ||
		strings.Contains(errStr, "executable file not found") {
		return false
	}

	return true
}
