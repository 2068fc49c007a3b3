package domain

import "time"

// ActionType identifies a primitive browser action.
type ActionType string

// Primitive action types executable by the engine.
const (
	ActionNavigate ActionType = "navigate"
	ActionClick    ActionType = "click"
	ActionFill     ActionType = "fill"
	ActionWait     ActionType = "wait"
	ActionAssert   ActionType = "assert"
)

// KnownActionTypes lists every action type the engine can execute.
// Used by plan validation to reject AI output with unknown actions.
//
//nolint:gochecknoglobals // Read-only lookup table
var KnownActionTypes = map[ActionType]bool{
	ActionNavigate: true,
	ActionClick:    true,
	ActionFill:     true,
	ActionWait:     true,
	ActionAssert:   true,
}

// Action is one primitive browser operation.
//
// Target semantics depend on the type: a URL for navigate, a CSS selector
// for click/fill/wait, and free assertion text for assert (Target holds the
// text to verify against the page).
type Action struct {
	// Type is the action kind.
	Type ActionType `json:"type"`

	// Target is the URL, selector, or assertion text depending on Type.
	Target string `json:"target"`

	// Value is the input value for fill actions.
	Value string `json:"value,omitempty"`

	// TimeoutMs overrides the per-action timeout when > 0.
	TimeoutMs int `json:"timeout_ms,omitempty"`
}

// Timeout returns the effective timeout for this action, falling back to
// the given default when the action carries none.
func (a Action) Timeout(fallback time.Duration) time.Duration {
	if a.TimeoutMs > 0 {
		return time.Duration(a.TimeoutMs) * time.Millisecond
	}
	return fallback
}

// ActionPlan is the ordered action sequence derived from one scenario.
// A plan is owned exclusively by the execution engine for the duration of
// one scenario run and discarded after use.
type ActionPlan struct {
	// ScenarioName names the scenario this plan was synthesized for.
	ScenarioName string `json:"scenario_name"`

	// Actions is the ordered action sequence. Never empty: synthesis
	// guarantees at least a navigate and an assert via the fallback plan.
	Actions []Action `json:"actions"`

	// Fallback marks plans built heuristically after AI synthesis failed.
	Fallback bool `json:"fallback,omitempty"`
}
