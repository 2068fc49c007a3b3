package execute

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
	"github.com/verityhq/verity/internal/testutil"
)

// scriptedActor records calls and fails on demand.
type scriptedActor struct {
	body     string
	bodyErr  error
	clickErr error
	navs     []string
	clicks   []string
	fills    map[string]string
	waits    []string
}

func newScriptedActor(body string) *scriptedActor {
	return &scriptedActor{body: body, fills: map[string]string{}}
}

func (a *scriptedActor) Navigate(_ context.Context, url string) error {
	a.navs = append(a.navs, url)
	return nil
}

func (a *scriptedActor) Click(_ context.Context, selector string) error {
	a.clicks = append(a.clicks, selector)
	return a.clickErr
}

func (a *scriptedActor) Fill(_ context.Context, selector, value string) error {
	a.fills[selector] = value
	return nil
}

func (a *scriptedActor) WaitVisible(_ context.Context, selector string) error {
	a.waits = append(a.waits, selector)
	return nil
}

func (a *scriptedActor) BodyText(_ context.Context) (string, error) {
	return a.body, a.bodyErr
}

// slowActor blocks until its context expires.
type slowActor struct {
	scriptedActor
}

func (a *slowActor) Click(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

// recordingTelemetry counts snapshot/reset calls.
type recordingTelemetry struct {
	resets    int
	snapshots int
}

func (r *recordingTelemetry) Snapshot(_ int) ([]domain.ConsoleEntry, []domain.NetworkFailure) {
	r.snapshots++
	return []domain.ConsoleEntry{{Level: "error", Text: "boom"}},
		[]domain.NetworkFailure{{URL: "http://x/api", Reason: "refused"}}
}

func (r *recordingTelemetry) Reset() { r.resets++ }

// pathCapturer returns a fixed screenshot path.
type pathCapturer struct {
	path string
	err  error
}

func (c *pathCapturer) CaptureScreenshot(_ context.Context, _ string) (string, error) {
	return c.path, c.err
}

func testEngine() *Engine {
	return New("http://preview.test", time.Second, 0, zerolog.Nop())
}

func navPlan(actions ...domain.Action) domain.ActionPlan {
	return domain.ActionPlan{ScenarioName: "scenario", Actions: actions}
}

func TestExecute_RunsAllActions(t *testing.T) {
	actor := newScriptedActor("Welcome back, Sam")
	engine := testEngine()

	plan := navPlan(
		domain.Action{Type: domain.ActionNavigate, Target: "/login"},
		domain.Action{Type: domain.ActionFill, Target: "#email", Value: "sam@example.com"},
		domain.Action{Type: domain.ActionClick, Target: "button[type=submit]"},
		domain.Action{Type: domain.ActionWait, Target: ".dashboard"},
		domain.Action{Type: domain.ActionAssert, Target: "welcome back"},
	)

	trace := engine.Execute(context.Background(), actor, nil, nil, plan)

	assert.Empty(t, trace.ThrownError)
	assert.Equal(t, 5, trace.ActionsExecuted)
	assert.Equal(t, []string{"http://preview.test/login"}, actor.navs)
	assert.Equal(t, "sam@example.com", actor.fills["#email"])
	require.NotNil(t, trace.LastAssert)
	assert.True(t, trace.LastAssert.Passed, "assert is case-insensitive")
	assert.NotEmpty(t, trace.Observed)
}

func TestExecute_ObservedExcerptStaysValidUTF8(t *testing.T) {
	// 3-byte runes, sized so the excerpt cap lands mid-rune.
	actor := newScriptedActor(strings.Repeat("€", 700))
	engine := testEngine()

	trace := engine.Execute(context.Background(), actor, nil, nil, navPlan(
		domain.Action{Type: domain.ActionNavigate, Target: "/"},
	))

	assert.LessOrEqual(t, len(trace.Observed), 2000)
	assert.True(t, utf8.ValidString(trace.Observed), "excerpt must not split a rune")
	assert.True(t, strings.HasPrefix(strings.Repeat("€", 700), trace.Observed))
}

func TestExecute_ActionFailureAbortsScenario(t *testing.T) {
	actor := newScriptedActor("page")
	actor.clickErr = testutil.ErrMockBrowser
	engine := testEngine()

	plan := navPlan(
		domain.Action{Type: domain.ActionNavigate, Target: "/"},
		domain.Action{Type: domain.ActionClick, Target: "#missing"},
		domain.Action{Type: domain.ActionAssert, Target: "never reached"},
	)

	trace := engine.Execute(context.Background(), actor, nil, nil, plan)

	assert.Equal(t, 2, trace.ActionsExecuted, "execution stops at the failing action")
	assert.Contains(t, trace.ThrownError, "click")
	assert.Contains(t, trace.ThrownError, "#missing")
	assert.Nil(t, trace.LastAssert)
}

func TestExecute_ActionTimeout(t *testing.T) {
	actor := &slowActor{}
	engine := testEngine()

	plan := navPlan(domain.Action{Type: domain.ActionClick, Target: "#slow", TimeoutMs: 20})

	trace := engine.Execute(context.Background(), actor, nil, nil, plan)
	assert.Contains(t, trace.ThrownError, verrors.ErrActionTimeout.Error())
}

func TestExecute_UnknownActionType(t *testing.T) {
	actor := newScriptedActor("page")
	engine := testEngine()

	plan := navPlan(domain.Action{Type: domain.ActionType("teleport"), Target: "x"})

	trace := engine.Execute(context.Background(), actor, nil, nil, plan)
	assert.Contains(t, trace.ThrownError, "unknown action")
}

func TestExecute_FailedAssertIsNotAnError(t *testing.T) {
	actor := newScriptedActor("404 not found")
	engine := testEngine()

	plan := navPlan(domain.Action{Type: domain.ActionAssert, Target: "Welcome back"})

	trace := engine.Execute(context.Background(), actor, nil, nil, plan)

	assert.Empty(t, trace.ThrownError, "a deterministic miss is a classification concern")
	require.NotNil(t, trace.LastAssert)
	assert.False(t, trace.LastAssert.Passed)
}

func TestExecute_TelemetryLifecycle(t *testing.T) {
	actor := newScriptedActor("page")
	telemetry := &recordingTelemetry{}
	engine := testEngine()

	trace := engine.Execute(context.Background(), actor, telemetry, nil,
		navPlan(domain.Action{Type: domain.ActionNavigate, Target: "/"}))

	assert.Equal(t, 1, telemetry.resets, "telemetry window resets at scenario start")
	assert.Equal(t, 1, telemetry.snapshots)
	require.Len(t, trace.ConsoleLogs, 1)
	assert.Equal(t, "boom", trace.ConsoleLogs[0].Text)
	require.Len(t, trace.NetworkErrors, 1)
}

func TestExecute_ScreenshotCapture(t *testing.T) {
	t.Run("path recorded on success", func(t *testing.T) {
		actor := newScriptedActor("page")
		engine := testEngine()

		trace := engine.Execute(context.Background(), actor, nil, &pathCapturer{path: "/tmp/01-s.png"},
			navPlan(domain.Action{Type: domain.ActionNavigate, Target: "/"}))
		assert.Equal(t, "/tmp/01-s.png", trace.ScreenshotPath)
	})

	t.Run("capture failure is non-fatal", func(t *testing.T) {
		actor := newScriptedActor("page")
		engine := testEngine()

		trace := engine.Execute(context.Background(), actor, nil, &pathCapturer{err: testutil.ErrMockBrowser},
			navPlan(domain.Action{Type: domain.ActionNavigate, Target: "/"}))
		assert.Empty(t, trace.ScreenshotPath)
		assert.Empty(t, trace.ThrownError)
	})
}

func TestExecute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trace := testEngine().Execute(ctx, newScriptedActor("page"), nil, nil,
		navPlan(domain.Action{Type: domain.ActionNavigate, Target: "/"}))

	assert.Zero(t, trace.ActionsExecuted)
	assert.NotEmpty(t, trace.ThrownError)
}

func TestResolveURL(t *testing.T) {
	engine := testEngine()
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"relative path", "/checkout", "http://preview.test/checkout"},
		{"absolute http", "http://other.test/x", "http://other.test/x"},
		{"absolute https", "https://other.test/x", "https://other.test/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.resolveURL(tt.target))
		})
	}
}
