package domain

import "time"

// ConsoleEntry is one captured browser console message.
type ConsoleEntry struct {
	// Level is the console API level (log, warn, error, ...).
	Level string `json:"level"`

	// Text is the rendered message text.
	Text string `json:"text"`

	// At is when the message was captured.
	At time.Time `json:"at"`
}

// NetworkFailure is one failed network request captured during a scenario.
// Unlike console entries, network failures are never truncated.
type NetworkFailure struct {
	// URL is the request URL.
	URL string `json:"url"`

	// Reason is the failure text reported by the browser (e.g.
	// "net::ERR_CONNECTION_REFUSED") or an HTTP status line for 4xx/5xx.
	Reason string `json:"reason"`

	// At is when the failure was captured.
	At time.Time `json:"at"`
}

// AssertOutcome records the result of the last assert action in a plan.
type AssertOutcome struct {
	// Text is the assertion text that was checked.
	Text string `json:"text"`

	// Passed is the deterministic substring check result.
	Passed bool `json:"passed"`
}

// ScenarioTrace is the raw record of one scenario execution, consumed once
// by the result classifier and then retained read-only for reporting.
type ScenarioTrace struct {
	// ActionsExecuted counts actions that completed (including the failing one).
	ActionsExecuted int `json:"actions_executed"`

	// DurationMs is the wall-clock execution time of the scenario.
	DurationMs int64 `json:"duration_ms"`

	// ScreenshotPath is the scenario-completion screenshot, captured on
	// success and failure alike. Empty when capture is disabled or failed.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// ConsoleLogs holds the most recent console entries (capped).
	ConsoleLogs []ConsoleEntry `json:"console_logs,omitempty"`

	// NetworkErrors holds all failed network requests.
	NetworkErrors []NetworkFailure `json:"network_errors,omitempty"`

	// Observed is a bounded excerpt of the page state at scenario end,
	// used by AI-assisted verification.
	Observed string `json:"observed,omitempty"`

	// LastAssert is the outcome of the final assert action, when one ran.
	LastAssert *AssertOutcome `json:"last_assert,omitempty"`

	// ThrownError is set iff execution itself threw (timeout, crash).
	// Its presence forces classification to ERROR.
	ThrownError string `json:"thrown_error,omitempty"`
}
