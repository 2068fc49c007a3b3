// Package testutil provides testing utilities for VERITY.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockAI simulates an AI call failure.
	ErrMockAI = errors.New("ai call failed")

	// ErrMockBrowser simulates a browser session crash.
	ErrMockBrowser = errors.New("browser crashed")

	// ErrMockNetwork simulates a network error.
	ErrMockNetwork = errors.New("network error")

	// ErrMockCheckAPI simulates a check-run API failure.
	ErrMockCheckAPI = errors.New("check api error")

	// ErrMockComment simulates a comment-post failure.
	ErrMockComment = errors.New("comment post error")

	// ErrMockStore simulates an artifact store failure.
	ErrMockStore = errors.New("artifact store error")
)
