package classify

import (
	"encoding/json"
	"fmt"

	verrors "github.com/verityhq/verity/internal/errors"
	"github.com/verityhq/verity/internal/schema"
)

// verdictSchemaJSON is the strict schema AI verification responses must
// satisfy. The response is untrusted; anything outside this shape is
// rejected and the scenario fails closed.
const verdictSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["match", "actual"],
  "additionalProperties": false,
  "properties": {
    "match": {"type": "boolean"},
    "actual": {"type": "string", "minLength": 1}
  }
}`

//nolint:gochecknoglobals // Compiled schema, read-only after init
var verdictValidator = schema.MustCompile("verdict.json", verdictSchemaJSON)

// Verdict is the validated AI verification response.
type Verdict struct {
	// Match reports whether the observed state satisfies the expectation.
	Match bool `json:"match"`

	// Actual is the human-readable description of what was observed.
	Actual string `json:"actual"`
}

// ParseVerdict extracts and validates a verdict from free-form AI output.
func ParseVerdict(output string) (*Verdict, error) {
	data := schema.ExtractJSON(output)
	if data == nil {
		return nil, fmt.Errorf("%w: response contains no JSON object", verrors.ErrClassificationFailed)
	}
	if err := verdictValidator.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrClassificationFailed, err)
	}

	var v Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrClassificationFailed, err)
	}
	return &v, nil
}
