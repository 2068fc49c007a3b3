package domain

import (
	"time"

	"github.com/verityhq/verity/internal/constants"
)

// ScenarioResult is the classified outcome of one scenario.
type ScenarioResult struct {
	// Scenario is the recipe scenario this result belongs to.
	Scenario TestScenario `json:"scenario"`

	// Status is the classified outcome. ERROR iff execution itself threw;
	// FAIL means the plan executed but verification did not hold.
	Status constants.ScenarioStatus `json:"status"`

	// Expected is the scenario's expected-outcome text.
	Expected string `json:"expected,omitempty"`

	// Actual is the human-readable observed result.
	Actual string `json:"actual,omitempty"`

	// DurationMs is the scenario execution time.
	DurationMs int64 `json:"duration_ms"`

	// ScreenshotPath is the scenario-completion screenshot, if captured.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// ConsoleLogs carries the capped console telemetry for reporting.
	ConsoleLogs []ConsoleEntry `json:"console_logs,omitempty"`

	// NetworkErrors carries all captured network failures for reporting.
	NetworkErrors []NetworkFailure `json:"network_errors,omitempty"`

	// Error is the execution error text when Status is ERROR.
	Error string `json:"error,omitempty"`
}

// ExecutionResult aggregates all scenario results for one run.
//
// Invariant: Passed + Failed + Skipped == TotalTests, and TotalTests equals
// len(Scenarios). ERROR scenarios count as failed for the tally.
type ExecutionResult struct {
	// ExecutionID uniquely identifies this run; artifact paths are keyed
	// by it to avoid collisions between concurrent runs.
	ExecutionID string `json:"execution_id"`

	// Scenarios holds per-scenario results in recipe order.
	Scenarios []ScenarioResult `json:"scenarios"`

	// Passed counts scenarios with status pass.
	Passed int `json:"passed"`

	// Failed counts scenarios with status fail or error.
	Failed int `json:"failed"`

	// Skipped counts scenarios that never executed.
	Skipped int `json:"skipped"`

	// TotalTests is always len(Scenarios).
	TotalTests int `json:"total_tests"`

	// Duration is the total wall-clock run time.
	Duration time.Duration `json:"duration"`

	// FullVideoPath is the encoded run video, empty when recording was
	// disabled or encoding was unavailable.
	FullVideoPath string `json:"full_video_path,omitempty"`
}

// Tally recomputes the aggregate counters from Scenarios.
// Call after appending results to keep the counting invariant.
func (r *ExecutionResult) Tally() {
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, s := range r.Scenarios {
		switch s.Status {
		case constants.ScenarioPass:
			r.Passed++
		case constants.ScenarioFail, constants.ScenarioError:
			r.Failed++
		case constants.ScenarioSkip:
			r.Skipped++
		}
	}
	r.TotalTests = len(r.Scenarios)
}

// Consistent reports whether the counting invariant holds.
func (r *ExecutionResult) Consistent() bool {
	return r.TotalTests == len(r.Scenarios) &&
		r.Passed+r.Failed+r.Skipped == r.TotalTests
}

// BlockingFailure reports whether any smoke or critical-path scenario
// failed or errored. Downstream policy blocks merges on this.
func (r *ExecutionResult) BlockingFailure() bool {
	for _, s := range r.Scenarios {
		if s.Status == constants.ScenarioPass || s.Status == constants.ScenarioSkip {
			continue
		}
		if s.Scenario.ParsedPriority().Blocking() {
			return true
		}
	}
	return false
}
