package synth

import (
	"fmt"
	"strings"

	"github.com/verityhq/verity/internal/domain"
)

// maxHintsInPrompt bounds the selector hints included in a prompt so large
// codebases do not blow the context window.
const maxHintsInPrompt = 40

// buildPrompt renders the synthesis prompt for one scenario.
func buildPrompt(scenario domain.TestScenario, baseURL string, hints []domain.SelectorHint) string {
	var b strings.Builder

	b.WriteString("Convert this test scenario into browser actions.\n\n")
	fmt.Fprintf(&b, "Scenario: %s\n", scenario.Name)
	if scenario.Steps != "" {
		fmt.Fprintf(&b, "Steps: %s\n", scenario.Steps)
	}
	if scenario.Expected != "" {
		fmt.Fprintf(&b, "Expected outcome: %s\n", scenario.Expected)
	}
	fmt.Fprintf(&b, "Base URL: %s\n", baseURL)

	if len(hints) > 0 {
		b.WriteString("\nKnown selectors from the application source:\n")
		for i, h := range hints {
			if i >= maxHintsInPrompt {
				fmt.Fprintf(&b, "... and %d more\n", len(hints)-maxHintsInPrompt)
				break
			}
			fmt.Fprintf(&b, "- %s: %s", h.Type, h.Value)
			if h.File != "" {
				fmt.Fprintf(&b, " (%s)", h.File)
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString(`
Respond with ONLY a JSON object, no prose, in this exact shape:
{"actions": [{"type": "...", "target": "...", "value": "...", "timeout_ms": 0}]}

Rules:
- "type" must be one of: navigate, click, fill, wait, assert
- "target" is a URL for navigate, a CSS selector for click/fill/wait,
  and the text to verify for assert
- "value" is required only for fill
- relative navigate targets are resolved against the base URL
- end the plan with exactly one assert that checks the expected outcome
`)

	return b.String()
}

// buildRetryPrompt renders the single re-prompt sent after malformed output.
func buildRetryPrompt(original, reason string) string {
	return fmt.Sprintf(
		"Your previous response was rejected: %s\n\nRespond again with ONLY the JSON object and nothing else.\n\n%s",
		reason, original)
}
