package constants

// ScenarioStatus is the classified outcome of a single scenario.
type ScenarioStatus string

// Scenario outcome values.
//
// The ERROR/FAIL distinction is load-bearing: ERROR means execution itself
// threw (browser crash, navigation timeout), FAIL means the plan ran but the
// expectation did not hold. Downstream merge policy treats them differently,
// so the distinction must survive end to end.
const (
	// ScenarioPass indicates the scenario executed and the expectation held.
	ScenarioPass ScenarioStatus = "pass"

	// ScenarioFail indicates the plan executed but verification did not hold.
	ScenarioFail ScenarioStatus = "fail"

	// ScenarioError indicates execution itself threw before verification.
	ScenarioError ScenarioStatus = "error"

	// ScenarioSkip indicates the scenario never executed (e.g. the browser
	// session could not be recovered for the remainder of the run).
	ScenarioSkip ScenarioStatus = "skip"
)

// CheckStatus represents the lifecycle state of an external check run.
type CheckStatus string

// Check run lifecycle states. Transitions are strictly monotonic:
// queued → in_progress → completed. Once completed, no further transitions
// are permitted; a new run requires a new check run.
const (
	CheckStatusQueued     CheckStatus = "queued"
	CheckStatusInProgress CheckStatus = "in_progress"
	CheckStatusCompleted  CheckStatus = "completed"
)

// CheckConclusion is the terminal verdict of a completed check run.
type CheckConclusion string

// Check run conclusions.
const (
	CheckConclusionSuccess CheckConclusion = "success"
	CheckConclusionFailure CheckConclusion = "failure"
)
