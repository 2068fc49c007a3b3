package synth

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/verity/internal/ai"
	"github.com/verityhq/verity/internal/domain"
	"github.com/verityhq/verity/internal/testutil"
)

const validPlanJSON = `{
  "actions": [
    {"type": "navigate", "target": "/login"},
    {"type": "fill", "target": "#email", "value": "user@example.com"},
    {"type": "click", "target": "button[type=submit]"},
    {"type": "assert", "target": "Welcome back"}
  ]
}`

func scriptedClient(outputs ...string) ai.Client {
	i := 0
	return ai.ClientFunc(func(_ context.Context, _ *ai.Request) (*ai.Result, error) {
		out := outputs[len(outputs)-1]
		if i < len(outputs) {
			out = outputs[i]
		}
		i++
		return &ai.Result{Output: out}, nil
	})
}

func testScenario() domain.TestScenario {
	return domain.TestScenario{
		Name:     "User can log in",
		Steps:    "Go to the login page, fill in credentials, submit",
		Expected: "The dashboard greets the user",
		Priority: "smoke",
	}
}

func TestSynthesize_ValidPlan(t *testing.T) {
	s := New(scriptedClient(validPlanJSON), "http://preview.test", zerolog.Nop())

	plan := s.Synthesize(context.Background(), testScenario(), nil)

	assert.False(t, plan.Fallback)
	assert.Equal(t, "User can log in", plan.ScenarioName)
	require.Len(t, plan.Actions, 4)
	assert.Equal(t, domain.ActionNavigate, plan.Actions[0].Type)
	assert.Equal(t, "user@example.com", plan.Actions[1].Value)
}

func TestSynthesize_FencedOutputAccepted(t *testing.T) {
	fenced := "Here is the plan:\n```json\n" + validPlanJSON + "\n```\n"
	s := New(scriptedClient(fenced), "http://preview.test", zerolog.Nop())

	plan := s.Synthesize(context.Background(), testScenario(), nil)
	assert.False(t, plan.Fallback)
	assert.Len(t, plan.Actions, 4)
}

func TestSynthesize_RepromptOnceThenSucceed(t *testing.T) {
	calls := 0
	client := ai.ClientFunc(func(_ context.Context, _ *ai.Request) (*ai.Result, error) {
		calls++
		if calls == 1 {
			return &ai.Result{Output: `{"actions": []}`}, nil // violates minItems
		}
		return &ai.Result{Output: validPlanJSON}, nil
	})
	s := New(client, "http://preview.test", zerolog.Nop())

	plan := s.Synthesize(context.Background(), testScenario(), nil)

	assert.Equal(t, 2, calls)
	assert.False(t, plan.Fallback)
}

func TestSynthesize_FallbackAfterTwoInvalid(t *testing.T) {
	s := New(scriptedClient("not json at all", `{"actions": [{"type": "teleport", "target": "x"}]}`),
		"http://preview.test", zerolog.Nop())

	plan := s.Synthesize(context.Background(), testScenario(), nil)

	assert.True(t, plan.Fallback)
	require.NotEmpty(t, plan.Actions, "fallback plan is never empty")
}

func TestSynthesize_FallbackOnClientError(t *testing.T) {
	client := ai.ClientFunc(func(_ context.Context, _ *ai.Request) (*ai.Result, error) {
		return nil, testutil.ErrMockAI
	})
	s := New(client, "http://preview.test", zerolog.Nop())

	plan := s.Synthesize(context.Background(), testScenario(), nil)
	assert.True(t, plan.Fallback)
	assert.NotEmpty(t, plan.Actions)
}

func TestFallbackPlan(t *testing.T) {
	t.Run("with expected outcome", func(t *testing.T) {
		plan := FallbackPlan(testScenario(), "http://preview.test")

		assert.True(t, plan.Fallback)
		require.Len(t, plan.Actions, 3)
		assert.Equal(t, domain.ActionNavigate, plan.Actions[0].Type)
		assert.Equal(t, "http://preview.test", plan.Actions[0].Target)
		assert.Equal(t, domain.ActionWait, plan.Actions[1].Type)
		assert.Equal(t, domain.ActionAssert, plan.Actions[2].Type)
		assert.Equal(t, "The dashboard greets the user", plan.Actions[2].Target)
	})

	t.Run("without expected outcome falls back to the name", func(t *testing.T) {
		scenario := domain.TestScenario{Name: "homepage loads"}
		plan := FallbackPlan(scenario, "http://preview.test")

		require.Len(t, plan.Actions, 3)
		assert.Equal(t, "homepage loads", plan.Actions[2].Target)
	})
}

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantValid  bool
		wantReason string
	}{
		{"valid plan", validPlanJSON, true, ""},
		{"no json", "I could not produce a plan.", false, "no JSON"},
		{"empty actions", `{"actions": []}`, false, "minItems"},
		{"unknown action type", `{"actions": [{"type": "hover", "target": "x"}]}`, false, "enum"},
		{"missing target", `{"actions": [{"type": "click"}]}`, false, "target"},
		{"extra top-level field", `{"actions": [{"type": "click", "target": "x"}], "note": "hi"}`, false, "additional"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParsePlan("s", tt.output)
			assert.Equal(t, tt.wantValid, outcome.Valid())
			if !tt.wantValid {
				require.NotEmpty(t, outcome.Invalid)
			}
		})
	}
}

func TestBuildPrompt_IncludesScenarioAndHints(t *testing.T) {
	hints := []domain.SelectorHint{
		{Type: "data-testid", Value: "login-button", File: "src/Login.tsx"},
	}
	prompt := buildPrompt(testScenario(), "http://preview.test", hints)

	assert.Contains(t, prompt, "User can log in")
	assert.Contains(t, prompt, "http://preview.test")
	assert.Contains(t, prompt, "login-button")
}
