package synth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/verityhq/verity/internal/domain"
	"github.com/verityhq/verity/internal/schema"
)

// planSchemaJSON is the strict schema AI action plans must satisfy.
// The action type is a closed enum and every action needs a target;
// anything else is rejected before the plan can reach the engine.
const planSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["actions"],
  "additionalProperties": false,
  "properties": {
    "actions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["type", "target"],
        "additionalProperties": false,
        "properties": {
          "type": {
            "type": "string",
            "enum": ["navigate", "click", "fill", "wait", "assert"]
          },
          "target": {"type": "string", "minLength": 1},
          "value": {"type": "string"},
          "timeout_ms": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// planValidator is compiled once at init; the schema is a constant.
//
//nolint:gochecknoglobals // Compiled schema, read-only after init
var planValidator = schema.MustCompile("action_plan.json", planSchemaJSON)

// PlanOutcome is the tagged result of validating AI plan output.
// Exactly one of Plan or Invalid is meaningful: a nil Plan means the output
// was rejected and Invalid carries the reason.
type PlanOutcome struct {
	// Plan is the accepted plan; nil when the output was rejected.
	Plan *domain.ActionPlan

	// Invalid is the rejection reason used for the single re-prompt.
	Invalid string
}

// Valid reports whether the outcome carries an accepted plan.
func (o PlanOutcome) Valid() bool {
	return o.Plan != nil
}

// rawPlan is the decode target after schema validation.
type rawPlan struct {
	Actions []domain.Action `json:"actions"`
}

// ParsePlan validates free-form AI output against the plan schema and
// decodes it into an ActionPlan. The output is untrusted: JSON is first
// extracted from any surrounding prose, then schema-checked, then decoded.
func ParsePlan(scenarioName, output string) PlanOutcome {
	data := schema.ExtractJSON(output)
	if data == nil {
		return PlanOutcome{Invalid: "response contains no JSON object"}
	}

	if err := planValidator.Validate(data); err != nil {
		return PlanOutcome{Invalid: err.Error()}
	}

	var raw rawPlan
	if err := json.Unmarshal(data, &raw); err != nil {
		return PlanOutcome{Invalid: fmt.Sprintf("decode failed: %v", err)}
	}

	// The schema enforces the enum; this guards against schema drift.
	for i, a := range raw.Actions {
		if !domain.KnownActionTypes[a.Type] {
			return PlanOutcome{Invalid: fmt.Sprintf("actions[%d]: unknown type %q", i, a.Type)}
		}
		if strings.TrimSpace(a.Target) == "" {
			return PlanOutcome{Invalid: fmt.Sprintf("actions[%d]: empty target", i)}
		}
	}

	return PlanOutcome{Plan: &domain.ActionPlan{
		ScenarioName: scenarioName,
		Actions:      raw.Actions,
	}}
}
