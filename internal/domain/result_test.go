package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/verity/internal/constants"
)

func TestExecutionResult_Tally(t *testing.T) {
	tests := []struct {
		name        string
		statuses    []constants.ScenarioStatus
		wantPassed  int
		wantFailed  int
		wantSkipped int
	}{
		{"all pass", []constants.ScenarioStatus{constants.ScenarioPass, constants.ScenarioPass}, 2, 0, 0},
		{"mixed outcomes", []constants.ScenarioStatus{constants.ScenarioPass, constants.ScenarioFail, constants.ScenarioSkip}, 1, 1, 1},
		{"errors count as failed", []constants.ScenarioStatus{constants.ScenarioError, constants.ScenarioFail}, 0, 2, 0},
		{"empty run", nil, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &ExecutionResult{}
			for _, status := range tt.statuses {
				result.Scenarios = append(result.Scenarios, ScenarioResult{Status: status})
			}

			result.Tally()

			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, tt.wantFailed, result.Failed)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
			assert.Equal(t, len(tt.statuses), result.TotalTests)
			assert.True(t, result.Consistent(), "tally must preserve the counting invariant")
		})
	}
}

func TestExecutionResult_Consistent_DetectsDrift(t *testing.T) {
	result := &ExecutionResult{
		Scenarios:  []ScenarioResult{{Status: constants.ScenarioPass}},
		Passed:     2,
		TotalTests: 1,
	}
	assert.False(t, result.Consistent())

	result.Tally()
	assert.True(t, result.Consistent())
}

func TestExecutionResult_BlockingFailure(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		status   constants.ScenarioStatus
		want     bool
	}{
		{"smoke failure blocks", "smoke", constants.ScenarioFail, true},
		{"critical path error blocks", "CriticalPath", constants.ScenarioError, true},
		{"edge case failure does not block", "EdgeCase", constants.ScenarioFail, false},
		{"regression failure does not block", "regression", constants.ScenarioFail, false},
		{"smoke pass does not block", "smoke", constants.ScenarioPass, false},
		{"smoke skip does not block", "smoke", constants.ScenarioSkip, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &ExecutionResult{Scenarios: []ScenarioResult{{
				Scenario: TestScenario{Name: "s", Priority: tt.priority},
				Status:   tt.status,
			}}}
			assert.Equal(t, tt.want, result.BlockingFailure())
		})
	}
}

func TestCheckRun_Completed(t *testing.T) {
	run := &CheckRun{Status: constants.CheckStatusInProgress}
	require.False(t, run.Completed())

	run.Status = constants.CheckStatusCompleted
	assert.True(t, run.Completed())
}
