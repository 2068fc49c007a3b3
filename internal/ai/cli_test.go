package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/verity/internal/config"
	verrors "github.com/verityhq/verity/internal/errors"
)

func TestMain(m *testing.M) {
	// Backoff waits are wall-clock time; skip them in tests.
	timeSleep = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	m.Run()
}

// mockExecutor replays scripted invocations.
type mockExecutor struct {
	calls   int
	args    [][]string
	stdouts [][]byte
	stderrs [][]byte
	errs    []error
}

func (m *mockExecutor) Execute(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	i := m.calls
	m.calls++
	m.args = append(m.args, args)

	pick := func(s [][]byte) []byte {
		if i < len(s) {
			return s[i]
		}
		if len(s) > 0 {
			return s[len(s)-1]
		}
		return nil
	}
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	} else if len(m.errs) > 0 {
		err = m.errs[len(m.errs)-1]
	}
	return pick(m.stdouts), pick(m.stderrs), err
}

func newTestClient(executor CommandExecutor) *CLIClient {
	cfg := config.AIConfig{Command: "claude", Model: "sonnet", Timeout: 5 * time.Second}
	return NewCLIClientWithExecutor(cfg, executor, zerolog.Nop())
}

func successJSON(result string) []byte {
	return []byte(`{"type": "result", "is_error": false, "result": ` + jsonString(result) +
		`, "session_id": "sess-1", "duration_ms": 1200, "total_cost_usd": 0.01}`)
}

func jsonString(s string) string {
	return `"` + s + `"`
}

func TestCLIClient_Complete_Success(t *testing.T) {
	executor := &mockExecutor{stdouts: [][]byte{successJSON("plan here")}}
	client := newTestClient(executor)

	result, err := client.Complete(context.Background(), &Request{Prompt: "synthesize"})
	require.NoError(t, err)

	assert.Equal(t, "plan here", result.Output)
	assert.Equal(t, "sess-1", result.SessionID)
	assert.Equal(t, 1200, result.DurationMs)
	assert.InDelta(t, 0.01, result.TotalCostUSD, 1e-9)
}

func TestCLIClient_BuildArgs(t *testing.T) {
	executor := &mockExecutor{stdouts: [][]byte{successJSON("x")}}
	client := newTestClient(executor)

	_, err := client.Complete(context.Background(), &Request{
		Prompt: "do the thing",
		System: "respond with JSON only",
	})
	require.NoError(t, err)

	require.Len(t, executor.args, 1)
	args := executor.args[0]
	assert.Equal(t, []string{
		"-p", "do the thing",
		"--output-format", "json",
		"--model", "sonnet",
		"--append-system-prompt", "respond with JSON only",
	}, args)
}

func TestCLIClient_ModelOverride(t *testing.T) {
	executor := &mockExecutor{stdouts: [][]byte{successJSON("x")}}
	client := newTestClient(executor)

	_, err := client.Complete(context.Background(), &Request{Prompt: "p", Model: "haiku"})
	require.NoError(t, err)
	assert.Contains(t, executor.args[0], "haiku")
}

func TestCLIClient_RetriesTransientErrors(t *testing.T) {
	executor := &mockExecutor{
		stdouts: [][]byte{nil, successJSON("recovered")},
		stderrs: [][]byte{[]byte("connection reset by peer"), nil},
		errs:    []error{errors.New("exit status 1"), nil},
	}
	client := newTestClient(executor)

	result, err := client.Complete(context.Background(), &Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result.Output)
	assert.Equal(t, 2, executor.calls)
}

func TestCLIClient_ExhaustsRetries(t *testing.T) {
	executor := &mockExecutor{
		stderrs: [][]byte{[]byte("rate limited")},
		errs:    []error{errors.New("exit status 1")},
	}
	client := newTestClient(executor)

	_, err := client.Complete(context.Background(), &Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, verrors.ErrMaxRetriesExceeded)
	assert.Equal(t, 3, executor.calls)
}

func TestCLIClient_NonRetryableErrors(t *testing.T) {
	tests := []struct {
		name   string
		stdout []byte
		stderr []byte
		err    error
	}{
		{"auth failure", nil, []byte("Invalid API key provided"), errors.New("exit status 1")},
		{"missing binary", nil, nil, errors.New(`exec: "claude": executable file not found in $PATH`)},
		{"malformed json", []byte("not json"), nil, nil},
		{"empty response", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &mockExecutor{
				stdouts: [][]byte{tt.stdout},
				stderrs: [][]byte{tt.stderr},
				errs:    []error{tt.err},
			}
			client := newTestClient(executor)

			_, err := client.Complete(context.Background(), &Request{Prompt: "p"})
			require.Error(t, err)
			assert.Equal(t, 1, executor.calls, "non-retryable errors must not retry")
		})
	}
}

func TestCLIClient_ErrorResponsePayload(t *testing.T) {
	// A non-zero exit with a valid JSON error body surfaces the body.
	executor := &mockExecutor{
		stdouts: [][]byte{[]byte(`{"type": "result", "is_error": true, "result": "overloaded, try later"}`)},
		errs:    []error{errors.New("exit status 1")},
	}
	client := newTestClient(executor)

	_, err := client.Complete(context.Background(), &Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, verrors.ErrAIInvocation)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestCLIClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(&mockExecutor{})
	_, err := client.Complete(ctx, &Request{Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCLIResponse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		resp, err := parseCLIResponse(successJSON("hello"))
		require.NoError(t, err)
		assert.Equal(t, "hello", resp.Result)
		assert.False(t, resp.IsError)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseCLIResponse(nil)
		assert.ErrorIs(t, err, verrors.ErrAIEmptyResponse)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := parseCLIResponse([]byte("{"))
		assert.ErrorIs(t, err, verrors.ErrAIInvalidFormat)
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"auth error", errors.New("authentication failed"), false},
		{"api key error", errors.New("invalid API key"), false},
		{"parse error", errors.New("failed to parse json response"), false},
		{"missing binary", errors.New("claude CLI not found in PATH"), false},
		{"network error", errors.New("connection reset"), true},
		{"rate limit", errors.New("rate limited: 429"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	client := newTestClient(&mockExecutor{})

	assert.Equal(t, time.Minute, client.resolveTimeout(&Request{Timeout: time.Minute}))
	assert.Equal(t, 5*time.Second, client.resolveTimeout(&Request{}))

	bare := NewCLIClientWithExecutor(config.AIConfig{Command: "claude"}, &mockExecutor{}, zerolog.Nop())
	assert.Equal(t, 2*time.Minute, bare.resolveTimeout(&Request{}))
}
