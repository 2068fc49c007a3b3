// Package ai provides the AI call boundary for VERITY.
//
// This package defines the Client interface used by the action synthesizer
// and the result classifier, and provides a CLI-backed implementation that
// shells out to an AI CLI in non-interactive JSON mode.
//
// IMPORTANT: This package may import internal/constants, internal/errors,
// internal/config, and internal/logging. It MUST NOT import internal/synth,
// internal/classify, or internal/orchestrate.
package ai

import (
	"context"
	"time"
)

// Client is the interface for AI completion calls.
//
// Implementations are explicitly constructed and injected into consumers;
// there are no package-level client singletons, which keeps the AI boundary
// mockable in tests. Context controls timeout and cancellation.
type Client interface {
	// Complete executes one AI request and returns the result.
	// Returns an error wrapped with errors.ErrAIInvocation on failure.
	Complete(ctx context.Context, req *Request) (*Result, error)
}

// ClientFunc adapts a plain function to the Client interface.
// Handy for test fakes.
type ClientFunc func(ctx context.Context, req *Request) (*Result, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req *Request) (*Result, error) {
	return f(ctx, req)
}

// Request contains the parameters for one AI call.
type Request struct {
	// Prompt is the main instruction.
	Prompt string `json:"prompt"`

	// System is an additional system prompt, when needed.
	System string `json:"system,omitempty"`

	// Model specifies which AI model to use.
	Model string `json:"model,omitempty"`

	// Timeout is the maximum duration for the call.
	// Zero means the client default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Result captures the outcome of one AI call.
type Result struct {
	// Output is the raw response text.
	Output string `json:"output"`

	// DurationMs is how long the call took.
	DurationMs int `json:"duration_ms,omitempty"`

	// SessionID identifies the AI session for debugging.
	SessionID string `json:"session_id,omitempty"`

	// TotalCostUSD is the estimated cost of the call.
	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`
}
