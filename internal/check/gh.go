package check

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/ctxutil"
	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
)

// GHExecutor runs gh CLI commands. The interface allows tests to mock
// external command execution.
type GHExecutor interface {
	Execute(ctx context.Context, stdin []byte, args ...string) ([]byte, error)
}

// CLIReporter reports check runs and PR comments through the gh CLI,
// which carries its own authentication.
type CLIReporter struct {
	repo     string
	executor GHExecutor
	logger   zerolog.Logger
}

var (
	_ Reporter  = (*CLIReporter)(nil)
	_ Commenter = (*CLIReporter)(nil)
)

// NewCLIReporter creates a reporter for the given "owner/name" repository.
func NewCLIReporter(repo string, logger zerolog.Logger) *CLIReporter {
	return &CLIReporter{repo: repo, executor: &execGHExecutor{}, logger: logger}
}

// NewCLIReporterWithExecutor creates a reporter with a custom executor.
func NewCLIReporterWithExecutor(repo string, executor GHExecutor, logger zerolog.Logger) *CLIReporter {
	return &CLIReporter{repo: repo, executor: executor, logger: logger}
}

// checkRunResponse is the subset of the check run API response we read.
type checkRunResponse struct {
	ID int64 `json:"id"`
}

// Create opens a check run in the in_progress state and returns its id.
func (r *CLIReporter) Create(ctx context.Context, name, headSHA string) (int64, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}
	if name == "" || headSHA == "" {
		return 0, verrors.Wrap(verrors.ErrEmptyValue, "check name and head SHA are required")
	}

	payload, err := json.Marshal(map[string]any{
		"name":     name,
		"head_sha": headSHA,
		"status":   string(constants.CheckStatusInProgress),
	})
	if err != nil {
		return 0, verrors.Wrap(err, "failed to marshal check run payload")
	}

	out, err := r.executor.Execute(ctx, payload,
		"api", "-X", "POST", fmt.Sprintf("repos/%s/check-runs", r.repo), "--input", "-")
	if err != nil {
		return 0, verrors.Wrap(err, "check run creation failed")
	}

	var resp checkRunResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return 0, verrors.Wrap(err, "failed to parse check run response")
	}

	r.logger.Info().Int64("check_run_id", resp.ID).Str("head_sha", headSHA).Msg("check run created")
	return resp.ID, nil
}

// Update pushes status, conclusion, and report output to a check run.
// Annotations beyond the API limit are clamped before sending.
func (r *CLIReporter) Update(ctx context.Context, id int64, update Update) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if id <= 0 {
		return verrors.Wrapf(verrors.ErrEmptyValue, "invalid check run id %d", id)
	}

	body := map[string]any{
		"status": string(update.Status),
	}
	if update.Conclusion != "" {
		body["conclusion"] = string(update.Conclusion)
	}
	if update.Title != "" || update.Summary != "" {
		output := map[string]any{
			"title":   update.Title,
			"summary": update.Summary,
		}
		if len(update.Annotations) > 0 {
			output["annotations"] = ClampAnnotations(update.Annotations)
		}
		body["output"] = output
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return verrors.Wrap(err, "failed to marshal check run update")
	}

	_, err = r.executor.Execute(ctx, payload,
		"api", "-X", "PATCH", fmt.Sprintf("repos/%s/check-runs/%d", r.repo, id), "--input", "-")
	if err != nil {
		return verrors.Wrapf(verrors.ErrCheckRunOperation, "check run %d update failed: %v", id, err)
	}

	r.logger.Info().
		Int64("check_run_id", id).
		Str("status", string(update.Status)).
		Str("conclusion", string(update.Conclusion)).
		Msg("check run updated")
	return nil
}

// Comment posts a PR comment with the rendered report body.
func (r *CLIReporter) Comment(ctx context.Context, prNumber int, body string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if prNumber <= 0 {
		return verrors.Wrapf(verrors.ErrEmptyValue, "invalid PR number %d", prNumber)
	}
	if body == "" {
		return verrors.Wrap(verrors.ErrEmptyValue, "comment body cannot be empty")
	}

	args := []string{"pr", "comment", strconv.Itoa(prNumber), "--repo", r.repo, "--body-file", "-"}
	if _, err := r.executor.Execute(ctx, []byte(body), args...); err != nil {
		return verrors.Wrapf(verrors.ErrCommentFailed, "comment on PR #%d failed: %v", prNumber, err)
	}

	r.logger.Info().Int("pr_number", prNumber).Msg("PR comment posted")
	return nil
}

// execGHExecutor is the default executor backed by the gh binary.
// Unit tests mock the GHExecutor interface instead of exercising this.
type execGHExecutor struct{}

// Execute runs gh with the given args, feeding stdin when non-nil.
func (e *execGHExecutor) Execute(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...) //#nosec G204 -- args are constructed internally
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderr.Len() > 0 {
			return nil, verrors.Wrapf(verrors.ErrGHOperation, "gh failed [%s]", strings.TrimSpace(stderr.String()))
		}
		return nil, verrors.Wrap(verrors.ErrGHOperation, "gh command failed")
	}

	return stdout.Bytes(), nil
}

var _ GHExecutor = (*execGHExecutor)(nil)

// ResolveHeadSHA asks gh for the head commit of a pull request.
func (r *CLIReporter) ResolveHeadSHA(ctx context.Context, prNumber int) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	out, err := r.executor.Execute(ctx, nil,
		"pr", "view", strconv.Itoa(prNumber), "--repo", r.repo, "--json", "headRefOid")
	if err != nil {
		return "", verrors.Wrapf(err, "failed to resolve head SHA for PR #%d", prNumber)
	}

	var resp struct {
		HeadRefOid string `json:"headRefOid"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", verrors.Wrap(err, "failed to parse pr view response")
	}
	if resp.HeadRefOid == "" {
		return "", verrors.Wrapf(verrors.ErrGHOperation, "PR #%d has no head commit", prNumber)
	}
	return resp.HeadRefOid, nil
}

// ConclusionFor maps an execution result to the check conclusion.
func ConclusionFor(result *domain.ExecutionResult) constants.CheckConclusion {
	if result.Failed == 0 {
		return constants.CheckConclusionSuccess
	}
	return constants.CheckConclusionFailure
}
