// Package constants provides shared constant values for VERITY.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package constants

import "time"

// AppName is the application name used in logs, config paths, and check runs.
const AppName = "verity"

// Browser execution defaults.
const (
	// DefaultActionTimeout is the maximum duration for a single browser action.
	DefaultActionTimeout = 30 * time.Second

	// DefaultSlowMotion is the delay inserted between browser actions.
	// A small delay makes runs against real applications far less flaky.
	DefaultSlowMotion = 100 * time.Millisecond

	// DefaultNavigationWait is how long the fallback plan waits for page load.
	DefaultNavigationWait = 5 * time.Second

	// MaxConsoleEntries caps the console log entries retained per scenario.
	// Only the most recent entries are kept to bound report size.
	MaxConsoleEntries = 10

	// ScreencastQuality is the JPEG quality for recorded screencast frames.
	ScreencastQuality = 70

	// ScreencastFPS is the frame rate used when encoding the run video.
	ScreencastFPS = 10
)

// AI call defaults.
const (
	// DefaultAITimeout is the maximum duration for a single AI call.
	DefaultAITimeout = 2 * time.Minute

	// MaxRetryAttempts is the maximum number of attempts for transient AI failures.
	MaxRetryAttempts = 3

	// InitialBackoff is the first retry delay for AI calls.
	InitialBackoff = 1 * time.Second

	// BackoffMultiplier is the exponential backoff factor between retries.
	BackoffMultiplier = 2
)

// Reporting constraints.
const (
	// MaxAnnotations is the maximum number of failure annotations attached to
	// a check-run update. This is an external platform limit.
	MaxAnnotations = 50

	// InterScenarioGap is the fixed gap assumed between scenarios when
	// computing video deep-link offsets.
	InterScenarioGap = 1 * time.Second
)

// Ingestion defaults.
const (
	// DefaultDedupeWindow is how long a webhook delivery key is remembered.
	DefaultDedupeWindow = 10 * time.Minute
)
