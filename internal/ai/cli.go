package ai

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/config"
	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/ctxutil"
	verrors "github.com/verityhq/verity/internal/errors"
	"github.com/verityhq/verity/internal/logging"
)

// CommandExecutor runs an external command and returns its output.
// Abstracted for test injection.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execExecutor is the real CommandExecutor backed by os/exec.
type execExecutor struct{}

func (execExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}

// CLIClient invokes an AI CLI (e.g. "claude") in non-interactive JSON mode.
//
// Requests run with timeout and exponential-backoff retry on transient
// failures; non-retryable errors (auth, parse, missing binary) return
// immediately.
type CLIClient struct {
	cfg      config.AIConfig
	executor CommandExecutor
	logger   zerolog.Logger
}

// NewCLIClient constructs a CLI-backed client from configuration.
func NewCLIClient(cfg config.AIConfig, logger zerolog.Logger) *CLIClient {
	return &CLIClient{cfg: cfg, executor: execExecutor{}, logger: logger}
}

// NewCLIClientWithExecutor constructs a client with a custom executor.
// Intended for tests.
func NewCLIClientWithExecutor(cfg config.AIConfig, executor CommandExecutor, logger zerolog.Logger) *CLIClient {
	return &CLIClient{cfg: cfg, executor: executor, logger: logger}
}

// Ensure CLIClient implements Client.
var _ Client = (*CLIClient)(nil)

// resolveTimeout determines the timeout for a request.
// Priority: request timeout > config timeout > default timeout.
func (c *CLIClient) resolveTimeout(req *Request) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if c.cfg.Timeout > 0 {
		return c.cfg.Timeout
	}
	return constants.DefaultAITimeout
}

// resolveModel determines the model for a request.
func (c *CLIClient) resolveModel(req *Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.cfg.Model
}

// Complete implements Client. The request runs with timeout and retry.
func (c *CLIClient) Complete(ctx context.Context, req *Request) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, c.resolveTimeout(req))
	defer cancel()

	return c.completeWithRetry(runCtx, req)
}

// completeWithRetry executes the request with exponential backoff.
// Only transient errors are retried.
func (c *CLIClient) completeWithRetry(ctx context.Context, req *Request) (*Result, error) {
	var lastErr error
	backoff := constants.InitialBackoff

	for attempt := 1; attempt <= constants.MaxRetryAttempts; attempt++ {
		result, err := c.executeOnce(ctx, req)
		if err == nil {
			if attempt > 1 {
				c.logger.Info().Int("attempt", attempt).Msg("ai call succeeded after retry")
			}
			return result, nil
		}

		if !isRetryable(err) {
			c.logger.Debug().Err(err).Int("attempt", attempt).
				Msg("ai call failed with non-retryable error")
			return nil, err
		}

		lastErr = err
		if attempt < constants.MaxRetryAttempts {
			c.logger.Warn().Err(err).
				Int("attempt", attempt).
				Int("max_attempts", constants.MaxRetryAttempts).
				Dur("backoff", backoff).
				Msg("ai call failed, will retry after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timeSleep(backoff):
				backoff *= constants.BackoffMultiplier
			}
		}
	}

	return nil, fmt.Errorf("%w: %w: %w", verrors.ErrAIInvocation, verrors.ErrMaxRetriesExceeded, lastErr)
}

// executeOnce makes a single CLI invocation and parses the JSON response.
func (c *CLIClient) executeOnce(ctx context.Context, req *Request) (*Result, error) {
	args := c.buildArgs(req)

	c.logger.Debug().
		Str("command", c.cfg.Command).
		Strs("args", logging.RedactArgs(args)).
		Msg("invoking ai cli")

	start := time.Now()
	stdout, stderr, err := c.executor.Execute(ctx, c.cfg.Command, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The CLI may emit valid JSON with error details even on a
		// non-zero exit; prefer that over the raw exec error.
		if resp, perr := parseCLIResponse(stdout); perr == nil && resp.IsError {
			return nil, fmt.Errorf("%w: %s", verrors.ErrAIInvocation, resp.Result)
		}
		return nil, wrapExecutionError(c.cfg.Command, err, stderr)
	}

	resp, err := parseCLIResponse(stdout)
	if err != nil {
		return nil, err
	}
	if resp.IsError {
		return nil, fmt.Errorf("%w: %s", verrors.ErrAIInvocation, resp.Result)
	}
	if strings.TrimSpace(resp.Result) == "" {
		return nil, verrors.ErrAIEmptyResponse
	}

	result := resp.toResult()
	if result.DurationMs == 0 {
		result.DurationMs = int(time.Since(start).Milliseconds())
	}
	return result, nil
}

// buildArgs assembles the CLI argument list for one request.
func (c *CLIClient) buildArgs(req *Request) []string {
	args := []string{"-p", req.Prompt, "--output-format", "json"}
	if model := c.resolveModel(req); model != "" {
		args = append(args, "--model", model)
	}
	if req.System != "" {
		args = append(args, "--append-system-prompt", req.System)
	}
	return args
}

// wrapExecutionError wraps a CLI execution error with actionable context.
func wrapExecutionError(command string, err error, stderr []byte) error {
	stderrStr := strings.TrimSpace(string(stderr))

	if strings.Contains(err.Error(), "executable file not found") {
		return fmt.Errorf("%w: %s CLI not found in PATH", verrors.ErrAIInvocation, command)
	}
	if strings.Contains(strings.ToLower(stderrStr), "api key") ||
		strings.Contains(strings.ToLower(stderrStr), "authentication") {
		return fmt.Errorf("%w: API key error: %s", verrors.ErrAIInvocation, stderrStr)
	}
	if stderrStr != "" {
		return fmt.Errorf("%w: %s", verrors.ErrAIInvocation, stderrStr)
	}
	return fmt.Errorf("%w: %s", verrors.ErrAIInvocation, err.Error())
}
