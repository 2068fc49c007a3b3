// Package domain provides shared domain types for the VERITY test
// execution pipeline. These types are used across all internal packages to
// ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case, except where the upstream recipe
// format dictates otherwise.
package domain

import "strings"

// Priority classifies a test scenario for sort order and report grouping.
// Priority never affects scheduling: scenarios always execute sequentially
// in recipe order, and priority sorting is applied only at reporting time.
type Priority string

// Scenario priorities, from most to least critical.
const (
	// PrioritySmoke marks scenarios that gate basic availability.
	PrioritySmoke Priority = "smoke"

	// PriorityCritical marks critical-path (happy-path) scenarios.
	PriorityCritical Priority = "critical_path"

	// PriorityEdgeCase marks edge-case scenarios.
	PriorityEdgeCase Priority = "edge_case"

	// PriorityRegression marks regression-guard scenarios.
	PriorityRegression Priority = "regression"
)

// ParsePriority normalizes an upstream priority string. The upstream
// analysis emits values like "Smoke", "CriticalPath", "HappyPath",
// "EdgeCase" and "Regression"; unknown values map to PriorityRegression so
// every scenario lands in some report bucket.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)) {
	case "smoke":
		return PrioritySmoke
	case "criticalpath", "happypath", "critical":
		return PriorityCritical
	case "edgecase", "edge":
		return PriorityEdgeCase
	default:
		return PriorityRegression
	}
}

// SortRank returns the ordering rank for report grouping; lower is more
// critical.
func (p Priority) SortRank() int {
	switch p {
	case PrioritySmoke:
		return 0
	case PriorityCritical:
		return 1
	case PriorityEdgeCase:
		return 2
	case PriorityRegression:
		return 3
	default:
		return 4
	}
}

// Label returns the human-readable bucket name used in reports.
func (p Priority) Label() string {
	switch p {
	case PrioritySmoke:
		return "Smoke"
	case PriorityCritical:
		return "Critical Path"
	case PriorityEdgeCase:
		return "Edge Case"
	case PriorityRegression:
		return "Regression"
	default:
		return string(p)
	}
}

// Blocking reports whether a failure in this bucket should block a merge.
func (p Priority) Blocking() bool {
	return p == PrioritySmoke || p == PriorityCritical
}

// TestScenario is one test case from the recipe, described in natural
// language with an expected outcome and a priority.
//
// The JSON field names match the upstream AI-analysis output format:
// a JSON array of {scenario, priority, steps?, expected?}.
type TestScenario struct {
	// Name is the scenario name (upstream field "scenario").
	Name string `json:"scenario" yaml:"scenario"`

	// Steps is the natural-language description of what to do.
	Steps string `json:"steps,omitempty" yaml:"steps,omitempty"`

	// Expected is the natural-language expected outcome.
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Priority is the raw upstream priority string; use ParsePriority.
	Priority string `json:"priority" yaml:"priority"`
}

// ParsedPriority returns the normalized priority for this scenario.
func (s TestScenario) ParsedPriority() Priority {
	return ParsePriority(s.Priority)
}

// TestRecipe is the ordered, immutable set of scenarios for one run.
// Scenarios execute in the given order; they are never re-sorted.
type TestRecipe struct {
	Scenarios []TestScenario `json:"scenarios" yaml:"scenarios"`
}

// Empty reports whether the recipe contains no scenarios.
func (r TestRecipe) Empty() bool {
	return len(r.Scenarios) == 0
}

// SelectorHint is a DOM selector extracted by the static code-scanning
// collaborator. Hints are optional and only improve synthesis accuracy.
type SelectorHint struct {
	// Type is the selector kind (e.g. "data-testid", "id", "css").
	Type string `json:"type"`

	// Value is the selector value.
	Value string `json:"value"`

	// File is the source file the selector was found in.
	File string `json:"file,omitempty"`
}
