package ai

import (
	"encoding/json"
	"fmt"

	verrors "github.com/verityhq/verity/internal/errors"
)

// cliResponse matches the JSON emitted by the AI CLI with
// --output-format json.
type cliResponse struct {
	// Type indicates the response type (e.g. "result").
	Type string `json:"type"`

	// IsError indicates whether the response represents an error.
	IsError bool `json:"is_error"`

	// Result contains the AI's text output.
	Result string `json:"result"`

	// SessionID identifies the AI session for debugging.
	SessionID string `json:"session_id"`

	// Duration is how long the session took in milliseconds.
	Duration int `json:"duration_ms"`

	// TotalCost is the estimated cost in USD.
	TotalCost float64 `json:"total_cost_usd"`
}

// parseCLIResponse parses CLI stdout.
// Returns an error wrapped with ErrAIInvalidFormat on parse failure.
func parseCLIResponse(data []byte) (*cliResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", verrors.ErrAIEmptyResponse)
	}
	var resp cliResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse json response: %s",
			verrors.ErrAIInvalidFormat, err.Error())
	}
	return &resp, nil
}

// toResult converts a cliResponse to the provider-agnostic Result.
func (r *cliResponse) toResult() *Result {
	return &Result{
		Output:       r.Result,
		DurationMs:   r.Duration,
		SessionID:    r.SessionID,
		TotalCostUSD: r.TotalCost,
	}
}
