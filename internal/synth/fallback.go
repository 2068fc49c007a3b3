package synth

import (
	"strings"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
)

// FallbackPlan builds the minimal heuristic plan used when AI synthesis
// fails: navigate to the base URL, wait for the page body, then assert the
// scenario's expected outcome as a free-text check. The returned plan is
// never empty, so every scenario stays executable.
func FallbackPlan(scenario domain.TestScenario, baseURL string) domain.ActionPlan {
	assertText := strings.TrimSpace(scenario.Expected)
	if assertText == "" {
		// Without an expectation the best available check is that the page
		// rendered at all; an empty assert target would be rejected by the
		// engine.
		assertText = scenario.Name
	}

	return domain.ActionPlan{
		ScenarioName: scenario.Name,
		Fallback:     true,
		Actions: []domain.Action{
			{Type: domain.ActionNavigate, Target: baseURL},
			{
				Type:      domain.ActionWait,
				Target:    "body",
				TimeoutMs: int(constants.DefaultNavigationWait.Milliseconds()),
			},
			{Type: domain.ActionAssert, Target: assertText},
		},
	}
}
