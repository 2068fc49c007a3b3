// Package classify turns raw scenario traces into PASS/FAIL/ERROR verdicts.
//
// Classification is deterministic first: an execution error always means
// ERROR, and a matched assert means PASS. Only genuinely ambiguous
// free-text expectations are delegated to an AI verification call, and
// that path fails closed: a verification failure is recorded as FAIL,
// never silently as PASS.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/ai"
	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
)

// Classifier decides scenario outcomes.
type Classifier struct {
	client ai.Client
	logger zerolog.Logger
}

// New constructs a Classifier with an injected AI client.
func New(client ai.Client, logger zerolog.Logger) *Classifier {
	return &Classifier{client: client, logger: logger}
}

// Classify maps one trace and its expected outcome to a status and a
// human-readable actual-result description.
func (c *Classifier) Classify(ctx context.Context, trace domain.ScenarioTrace, expected string) (constants.ScenarioStatus, string) {
	// Rule 1: execution threw. Always ERROR, never FAIL; downstream
	// policy depends on the distinction.
	if trace.ThrownError != "" {
		return constants.ScenarioError, trace.ThrownError
	}

	// Rule 2: the deterministic assert matched; nothing ambiguous remains.
	if trace.LastAssert != nil && trace.LastAssert.Passed {
		return constants.ScenarioPass, fmt.Sprintf("page contains %q", trace.LastAssert.Text)
	}

	// Rule 3: no expectation and no assert to check. Executing without
	// errors is the whole test.
	if strings.TrimSpace(expected) == "" && trace.LastAssert == nil {
		return constants.ScenarioPass, "scenario executed without errors"
	}

	// The deterministic check missed or was inconclusive; the expectation
	// is free text, so delegate to AI verification.
	return c.verify(ctx, trace, expected)
}

// verify asks the AI whether the observed page state satisfies the
// expectation. Verification failures are final and fail closed.
func (c *Classifier) verify(ctx context.Context, trace domain.ScenarioTrace, expected string) (constants.ScenarioStatus, string) {
	if expected == "" && trace.LastAssert != nil {
		expected = trace.LastAssert.Text
	}

	result, err := c.client.Complete(ctx, &ai.Request{Prompt: buildVerifyPrompt(trace, expected)})
	if err != nil {
		c.logger.Warn().Err(err).Msg("verification call failed, failing closed")
		return constants.ScenarioFail, fmt.Sprintf("Verification failed: %v", err)
	}

	verdict, err := ParseVerdict(result.Output)
	if err != nil {
		c.logger.Warn().Err(err).Msg("verification verdict rejected, failing closed")
		return constants.ScenarioFail, fmt.Sprintf("Verification failed: %v", err)
	}

	if verdict.Match {
		return constants.ScenarioPass, verdict.Actual
	}
	return constants.ScenarioFail, verdict.Actual
}

// buildVerifyPrompt renders the verification prompt from trace evidence.
func buildVerifyPrompt(trace domain.ScenarioTrace, expected string) string {
	var b strings.Builder

	b.WriteString("Decide whether the observed page state satisfies the expected outcome.\n\n")
	fmt.Fprintf(&b, "Expected outcome: %s\n\n", expected)
	fmt.Fprintf(&b, "Observed page text (excerpt): %s\n", trace.Observed)

	if trace.LastAssert != nil {
		fmt.Fprintf(&b, "\nDeterministic text check for %q: %t\n",
			trace.LastAssert.Text, trace.LastAssert.Passed)
	}
	if len(trace.NetworkErrors) > 0 {
		b.WriteString("\nFailed network requests:\n")
		for _, f := range trace.NetworkErrors {
			fmt.Fprintf(&b, "- %s: %s\n", f.URL, f.Reason)
		}
	}

	b.WriteString(`
Respond with ONLY a JSON object, no prose:
{"match": true|false, "actual": "<one-sentence description of what the page actually shows>"}
`)
	return b.String()
}
