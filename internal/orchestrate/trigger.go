// Package orchestrate sequences a full automation run: trigger policy,
// check run lifecycle, scenario loop, artifact finalization, and report
// delivery.
package orchestrate

import (
	"github.com/verityhq/verity/internal/config"
	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Trigger describes the event asking for a run.
type Trigger struct {
	// PRNumber is the pull request the run reports to.
	PRNumber int

	// HeadSHA is the commit the check run attaches to.
	HeadSHA string

	// Labels are the labels present on the pull request.
	Labels []string

	// NeedsQA is the upstream analysis verdict on whether the change
	// warrants an automated QA run.
	NeedsQA bool

	// DeliveryID identifies the delivery event for deduplication. Empty
	// disables dedup for this trigger.
	DeliveryID string
}

// ShouldRun decides whether a trigger starts a run. It has no side
// effects: when automation is disabled or the trigger does not qualify,
// nothing has been touched.
func ShouldRun(cfg *config.Config, trigger Trigger, recipe domain.TestRecipe) error {
	if cfg == nil {
		return verrors.ErrConfigNil
	}
	if !cfg.Automation.Enabled {
		return verrors.Wrap(verrors.ErrAutomationDisabled, "automation is disabled")
	}
	if !trigger.NeedsQA {
		return verrors.Wrap(verrors.ErrQANotNeeded, "upstream analysis did not request QA")
	}
	if recipe.Empty() {
		return verrors.Wrap(verrors.ErrEmptyRecipe, "no scenarios to run")
	}
	if cfg.Automation.BaseURL == "" {
		return verrors.Wrap(verrors.ErrNoBaseURL, "no preview base URL configured")
	}
	if len(cfg.Automation.TriggerLabels) > 0 && !hasAllowedLabel(cfg.Automation.TriggerLabels, trigger.Labels) {
		return verrors.Wrapf(verrors.ErrLabelNotAllowed, "none of %v is a trigger label", trigger.Labels)
	}
	return nil
}

func hasAllowedLabel(allowed, present []string) bool {
	for _, label := range present {
		for _, want := range allowed {
			if label == want {
				return true
			}
		}
	}
	return false
}
