package check

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
	"github.com/verityhq/verity/internal/testutil"
)

// mockGHExecutor records calls and replays canned responses.
type mockGHExecutor struct {
	calls   [][]string
	stdins  [][]byte
	outputs [][]byte
	errs    []error
}

func (m *mockGHExecutor) Execute(_ context.Context, stdin []byte, args ...string) ([]byte, error) {
	i := len(m.calls)
	m.calls = append(m.calls, args)
	m.stdins = append(m.stdins, stdin)

	var out []byte
	if i < len(m.outputs) {
		out = m.outputs[i]
	}
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return out, err
}

func newTestReporter(executor GHExecutor) *CLIReporter {
	return NewCLIReporterWithExecutor("acme/webapp", executor, zerolog.Nop())
}

func TestCLIReporter_Create(t *testing.T) {
	executor := &mockGHExecutor{outputs: [][]byte{[]byte(`{"id": 4242}`)}}
	reporter := newTestReporter(executor)

	id, err := reporter.Create(context.Background(), "verity", "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)

	require.Len(t, executor.calls, 1)
	assert.Contains(t, executor.calls[0], "repos/acme/webapp/check-runs")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(executor.stdins[0], &payload))
	assert.Equal(t, "verity", payload["name"])
	assert.Equal(t, "abc123", payload["head_sha"])
	assert.Equal(t, "in_progress", payload["status"])
}

func TestCLIReporter_Create_ValidationErrors(t *testing.T) {
	reporter := newTestReporter(&mockGHExecutor{})

	_, err := reporter.Create(context.Background(), "", "abc123")
	assert.ErrorIs(t, err, verrors.ErrEmptyValue)

	_, err = reporter.Create(context.Background(), "verity", "")
	assert.ErrorIs(t, err, verrors.ErrEmptyValue)
}

func TestCLIReporter_Create_ExecutorError(t *testing.T) {
	executor := &mockGHExecutor{errs: []error{testutil.ErrMockCheckAPI}}
	reporter := newTestReporter(executor)

	_, err := reporter.Create(context.Background(), "verity", "abc123")
	assert.ErrorIs(t, err, testutil.ErrMockCheckAPI)
}

func TestCLIReporter_Update(t *testing.T) {
	executor := &mockGHExecutor{outputs: [][]byte{[]byte(`{}`)}}
	reporter := newTestReporter(executor)

	err := reporter.Update(context.Background(), 4242, Update{
		Status:     constants.CheckStatusCompleted,
		Conclusion: constants.CheckConclusionFailure,
		Title:      "1/3 tests passed",
		Summary:    "details in the PR comment",
		Annotations: []domain.Annotation{
			{Path: "recipe.yaml", StartLine: 1, EndLine: 1, Level: "failure", Title: "Scenario failed", Message: "checkout"},
		},
	})
	require.NoError(t, err)

	require.Len(t, executor.calls, 1)
	assert.Contains(t, executor.calls[0], "repos/acme/webapp/check-runs/4242")

	var payload struct {
		Status     string `json:"status"`
		Conclusion string `json:"conclusion"`
		Output     struct {
			Title       string              `json:"title"`
			Annotations []domain.Annotation `json:"annotations"`
		} `json:"output"`
	}
	require.NoError(t, json.Unmarshal(executor.stdins[0], &payload))
	assert.Equal(t, "completed", payload.Status)
	assert.Equal(t, "failure", payload.Conclusion)
	assert.Equal(t, "1/3 tests passed", payload.Output.Title)
	assert.Len(t, payload.Output.Annotations, 1)
}

func TestCLIReporter_Update_ClampsAnnotations(t *testing.T) {
	executor := &mockGHExecutor{outputs: [][]byte{[]byte(`{}`)}}
	reporter := newTestReporter(executor)

	err := reporter.Update(context.Background(), 1, Update{
		Status:      constants.CheckStatusCompleted,
		Conclusion:  constants.CheckConclusionFailure,
		Title:       "t",
		Summary:     "s",
		Annotations: makeAnnotations(constants.MaxAnnotations * 2),
	})
	require.NoError(t, err)

	var payload struct {
		Output struct {
			Annotations []domain.Annotation `json:"annotations"`
		} `json:"output"`
	}
	require.NoError(t, json.Unmarshal(executor.stdins[0], &payload))
	assert.Len(t, payload.Output.Annotations, constants.MaxAnnotations)
}

func TestCLIReporter_Update_InvalidID(t *testing.T) {
	reporter := newTestReporter(&mockGHExecutor{})
	err := reporter.Update(context.Background(), 0, Update{Status: constants.CheckStatusCompleted})
	assert.ErrorIs(t, err, verrors.ErrEmptyValue)
}

func TestCLIReporter_Comment(t *testing.T) {
	executor := &mockGHExecutor{}
	reporter := newTestReporter(executor)

	err := reporter.Comment(context.Background(), 99, "## Results")
	require.NoError(t, err)

	require.Len(t, executor.calls, 1)
	assert.Equal(t, []string{"pr", "comment", "99", "--repo", "acme/webapp", "--body-file", "-"}, executor.calls[0])
	assert.Equal(t, []byte("## Results"), executor.stdins[0])
}

func TestCLIReporter_Comment_Errors(t *testing.T) {
	t.Run("invalid PR number", func(t *testing.T) {
		reporter := newTestReporter(&mockGHExecutor{})
		assert.ErrorIs(t, reporter.Comment(context.Background(), 0, "body"), verrors.ErrEmptyValue)
	})

	t.Run("empty body", func(t *testing.T) {
		reporter := newTestReporter(&mockGHExecutor{})
		assert.ErrorIs(t, reporter.Comment(context.Background(), 1, ""), verrors.ErrEmptyValue)
	})

	t.Run("executor failure wraps sentinel", func(t *testing.T) {
		reporter := newTestReporter(&mockGHExecutor{errs: []error{testutil.ErrMockComment}})
		assert.ErrorIs(t, reporter.Comment(context.Background(), 1, "body"), verrors.ErrCommentFailed)
	})
}

func TestCLIReporter_ResolveHeadSHA(t *testing.T) {
	executor := &mockGHExecutor{outputs: [][]byte{[]byte(`{"headRefOid": "deadbeef"}`)}}
	reporter := newTestReporter(executor)

	sha, err := reporter.ResolveHeadSHA(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", sha)

	executor = &mockGHExecutor{outputs: [][]byte{[]byte(`{}`)}}
	reporter = newTestReporter(executor)
	_, err = reporter.ResolveHeadSHA(context.Background(), 12)
	assert.ErrorIs(t, err, verrors.ErrGHOperation)
}

func TestConclusionFor(t *testing.T) {
	passing := &domain.ExecutionResult{Passed: 3, TotalTests: 3}
	assert.Equal(t, constants.CheckConclusionSuccess, ConclusionFor(passing))

	failing := &domain.ExecutionResult{Passed: 2, Failed: 1, TotalTests: 3}
	assert.Equal(t, constants.CheckConclusionFailure, ConclusionFor(failing))
}
