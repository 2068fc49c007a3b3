// Package execute runs synthesized action plans against a browser session
// and produces raw scenario traces.
//
// Failure semantics: an action that times out or throws aborts the current
// scenario only, recording the error on the trace. The caller decides how
// to continue with the rest of the recipe.
package execute

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Actor is the set of primitive browser operations the engine drives.
// *browser.Session implements it; tests substitute fakes.
type Actor interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	WaitVisible(ctx context.Context, selector string) error
	BodyText(ctx context.Context) (string, error)
}

// TelemetrySource provides the captured console/network telemetry for the
// current scenario window. *browser.Telemetry implements it.
type TelemetrySource interface {
	Snapshot(maxConsole int) ([]domain.ConsoleEntry, []domain.NetworkFailure)
	Reset()
}

// Capturer persists a scenario-completion screenshot and returns its path.
// The artifact store implements it. A nil Capturer disables screenshots.
type Capturer interface {
	CaptureScreenshot(ctx context.Context, scenarioName string) (string, error)
}

// observedExcerptLen bounds the page-state excerpt kept on the trace for
// AI-assisted verification.
const observedExcerptLen = 2000

// Engine executes action plans.
type Engine struct {
	baseURL       string
	actionTimeout time.Duration
	slowMotion    time.Duration
	logger        zerolog.Logger
}

// New constructs an Engine. actionTimeout is the default per-action
// timeout; individual actions may override it.
func New(baseURL string, actionTimeout, slowMotion time.Duration, logger zerolog.Logger) *Engine {
	if actionTimeout <= 0 {
		actionTimeout = constants.DefaultActionTimeout
	}
	return &Engine{
		baseURL:       baseURL,
		actionTimeout: actionTimeout,
		slowMotion:    slowMotion,
		logger:        logger,
	}
}

// Execute runs the plan's actions in order against the session and returns
// the raw trace. The plan is owned by the engine for the duration of the
// call and must be discarded afterwards.
//
// Execute itself never returns an error: execution failures are recorded
// as ThrownError on the trace so classification can mark the scenario
// ERROR while the run continues.
func (e *Engine) Execute(ctx context.Context, actor Actor, telemetry TelemetrySource, capturer Capturer, plan domain.ActionPlan) domain.ScenarioTrace {
	if telemetry != nil {
		telemetry.Reset()
	}

	trace := domain.ScenarioTrace{}
	start := time.Now()

	for i, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			trace.ThrownError = err.Error()
			break
		}

		err := e.executeAction(ctx, actor, &trace, action)
		trace.ActionsExecuted = i + 1

		if err != nil {
			e.logger.Warn().
				Str("scenario", plan.ScenarioName).
				Str("action", string(action.Type)).
				Str("target", action.Target).
				Err(err).
				Msg("action failed, aborting scenario")
			trace.ThrownError = fmt.Sprintf("%s %q: %v", action.Type, action.Target, err)
			break
		}

		e.pause(ctx)
	}

	trace.DurationMs = time.Since(start).Milliseconds()

	// Evidence is collected on success and failure alike.
	e.captureObserved(ctx, actor, &trace)
	if telemetry != nil {
		trace.ConsoleLogs, trace.NetworkErrors = telemetry.Snapshot(constants.MaxConsoleEntries)
	}
	if capturer != nil {
		if path, err := capturer.CaptureScreenshot(ctx, plan.ScenarioName); err == nil {
			trace.ScreenshotPath = path
		} else {
			e.logger.Debug().Err(err).
				Str("scenario", plan.ScenarioName).
				Msg("screenshot capture failed")
		}
	}

	return trace
}

// executeAction dispatches one action with its effective timeout.
func (e *Engine) executeAction(ctx context.Context, actor Actor, trace *domain.ScenarioTrace, action domain.Action) error {
	actionCtx, cancel := context.WithTimeout(ctx, action.Timeout(e.actionTimeout))
	defer cancel()

	var err error
	switch action.Type {
	case domain.ActionNavigate:
		err = actor.Navigate(actionCtx, e.resolveURL(action.Target))
	case domain.ActionClick:
		err = actor.Click(actionCtx, action.Target)
	case domain.ActionFill:
		err = actor.Fill(actionCtx, action.Target, action.Value)
	case domain.ActionWait:
		err = actor.WaitVisible(actionCtx, action.Target)
	case domain.ActionAssert:
		err = e.executeAssert(actionCtx, actor, trace, action)
	default:
		return fmt.Errorf("%w: %q", verrors.ErrUnknownAction, action.Type)
	}

	if err != nil && errors.Is(actionCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return verrors.ErrActionTimeout
	}
	return err
}

// executeAssert runs a free-text assertion: the assert passes
// deterministically when the page body contains the target text
// (case-insensitive). The boolean result is recorded on the trace; a
// deterministic miss is not an execution error; classification decides
// what it means.
func (e *Engine) executeAssert(ctx context.Context, actor Actor, trace *domain.ScenarioTrace, action domain.Action) error {
	body, err := actor.BodyText(ctx)
	if err != nil {
		return err
	}
	trace.LastAssert = &domain.AssertOutcome{
		Text:   action.Target,
		Passed: strings.Contains(strings.ToLower(body), strings.ToLower(action.Target)),
	}
	return nil
}

// captureObserved records a bounded page-state excerpt for verification.
func (e *Engine) captureObserved(ctx context.Context, actor Actor, trace *domain.ScenarioTrace) {
	// Use a short timeout: if the session is dead this must not stall the run.
	obsCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	body, err := actor.BodyText(obsCtx)
	if err != nil {
		return
	}
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > observedExcerptLen {
		// Back up to a rune boundary so the excerpt stays valid UTF-8.
		cut := observedExcerptLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	trace.Observed = body
}

// resolveURL resolves relative navigation targets against the base URL.
func (e *Engine) resolveURL(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	base, err := url.Parse(e.baseURL)
	if err != nil {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return base.ResolveReference(ref).String()
}

// pause applies the inter-action slow-motion delay.
func (e *Engine) pause(ctx context.Context) {
	if e.slowMotion <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(e.slowMotion):
	}
}
