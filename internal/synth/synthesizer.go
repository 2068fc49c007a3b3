// Package synth converts natural-language test scenarios into executable
// browser action plans.
//
// Synthesis issues one AI call per scenario requesting a strict JSON action
// list, re-prompts exactly once on malformed output, and falls back to a
// heuristic plan when the AI cannot produce a valid one. Synthesize never
// fails: every scenario always gets some executable plan.
package synth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/ai"
	"github.com/verityhq/verity/internal/domain"
)

// Synthesizer derives action plans from scenarios.
type Synthesizer struct {
	client  ai.Client
	baseURL string
	logger  zerolog.Logger
}

// New constructs a Synthesizer. The AI client is injected so tests can fake
// the boundary.
func New(client ai.Client, baseURL string, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{client: client, baseURL: baseURL, logger: logger}
}

// Synthesize converts one scenario into an ordered action plan using the
// available selector hints. It has no side effects beyond the outbound AI
// call and never returns an unusable plan.
func (s *Synthesizer) Synthesize(ctx context.Context, scenario domain.TestScenario, hints []domain.SelectorHint) domain.ActionPlan {
	prompt := buildPrompt(scenario, s.baseURL, hints)

	outcome, err := s.request(ctx, scenario.Name, prompt)
	if err == nil && !outcome.Valid() {
		// One strict re-prompt carrying the rejection reason, then give up.
		s.logger.Debug().
			Str("scenario", scenario.Name).
			Str("reason", outcome.Invalid).
			Msg("plan rejected, re-prompting once")
		outcome, err = s.request(ctx, scenario.Name, buildRetryPrompt(prompt, outcome.Invalid))
	}

	if err != nil || !outcome.Valid() {
		reason := "invalid plan"
		if err != nil {
			reason = err.Error()
		} else if outcome.Invalid != "" {
			reason = outcome.Invalid
		}
		s.logger.Warn().
			Str("scenario", scenario.Name).
			Str("reason", reason).
			Msg("synthesis failed, using heuristic fallback plan")
		return FallbackPlan(scenario, s.baseURL)
	}

	s.logger.Info().
		Str("scenario", scenario.Name).
		Int("actions", len(outcome.Plan.Actions)).
		Msg("action plan synthesized")
	return *outcome.Plan
}

// request makes one AI call and parses its output into a PlanOutcome.
func (s *Synthesizer) request(ctx context.Context, scenarioName, prompt string) (PlanOutcome, error) {
	result, err := s.client.Complete(ctx, &ai.Request{Prompt: prompt})
	if err != nil {
		return PlanOutcome{}, err
	}
	return ParsePlan(scenarioName, result.Output), nil
}
