package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/verityhq/verity/internal/artifact"
	"github.com/verityhq/verity/internal/check"
	"github.com/verityhq/verity/internal/classify"
	"github.com/verityhq/verity/internal/clock"
	"github.com/verityhq/verity/internal/config"
	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/ctxutil"
	"github.com/verityhq/verity/internal/domain"
	verrors "github.com/verityhq/verity/internal/errors"
	"github.com/verityhq/verity/internal/execute"
	"github.com/verityhq/verity/internal/ingest"
	"github.com/verityhq/verity/internal/report"
	"github.com/verityhq/verity/internal/synth"
)

// timeSleep is swapped in tests to avoid real waits.
var timeSleep = time.Sleep

// Session is the browser surface the orchestrator drives. *browser.Session
// implements the underlying operations; the factory adapts it.
type Session interface {
	execute.Actor
	Screenshot(ctx context.Context) ([]byte, error)
	Healthy() bool
	Close()
	StartRecording(ctx context.Context, dir string) error
	StopRecording(ctx context.Context) (int, error)
}

// SessionFactory creates a fresh browser session and its telemetry source.
type SessionFactory func(ctx context.Context) (Session, execute.TelemetrySource, error)

// StoreFactory creates the run-scoped artifact store for an execution id.
type StoreFactory func(executionID string) (*artifact.Store, error)

// Orchestrator runs the full pipeline for one trigger at a time.
type Orchestrator struct {
	cfg        *config.Config
	synth      *synth.Synthesizer
	engine     *execute.Engine
	classifier *classify.Classifier
	reporter   check.Reporter
	commenter  check.Commenter
	sessions   SessionFactory
	stores     StoreFactory
	encoder    artifact.Encoder
	deduper    *ingest.Deduper
	clock      clock.Clock
	logger     zerolog.Logger
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Config     *config.Config
	Synth      *synth.Synthesizer
	Engine     *execute.Engine
	Classifier *classify.Classifier
	Reporter   check.Reporter
	Commenter  check.Commenter
	Sessions   SessionFactory
	Stores     StoreFactory
	Encoder    artifact.Encoder
	Deduper    *ingest.Deduper
	Clock      clock.Clock
	Logger     zerolog.Logger
}

// New wires an orchestrator from its dependencies.
func New(deps Deps) *Orchestrator {
	clk := deps.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	enc := deps.Encoder
	if enc == nil {
		enc = &artifact.FFmpegEncoder{}
	}
	return &Orchestrator{
		cfg:        deps.Config,
		synth:      deps.Synth,
		engine:     deps.Engine,
		classifier: deps.Classifier,
		reporter:   deps.Reporter,
		commenter:  deps.Commenter,
		sessions:   deps.Sessions,
		stores:     deps.Stores,
		encoder:    enc,
		deduper:    deps.Deduper,
		clock:      clk,
		logger:     deps.Logger,
	}
}

// Start launches Run in the background and returns immediately. The
// trigger source never waits on test execution.
func (o *Orchestrator) Start(ctx context.Context, trigger Trigger, recipe domain.TestRecipe, hints []domain.SelectorHint) {
	go func() {
		if err := o.Run(ctx, trigger, recipe, hints); err != nil {
			o.logger.Error().Err(err).Int("pr_number", trigger.PRNumber).Msg("automation run failed")
		}
	}()
}

// Run executes the pipeline synchronously: check run creation, the
// scenario loop, artifact finalization, check completion, and exactly one
// PR comment. Scenario failures never abort the run; only infrastructure
// failures surface as errors.
func (o *Orchestrator) Run(ctx context.Context, trigger Trigger, recipe domain.TestRecipe, hints []domain.SelectorHint) (err error) {
	if o.deduper != nil && trigger.DeliveryID != "" {
		if err := o.deduper.Check(fmt.Sprintf("pr-%d", trigger.PRNumber), trigger.DeliveryID); err != nil {
			o.logger.Info().Str("delivery_id", trigger.DeliveryID).Msg("duplicate delivery ignored")
			return err
		}
	}

	if err := ShouldRun(o.cfg, trigger, recipe); err != nil {
		return err
	}
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	executionID := uuid.NewString()
	logger := o.logger.With().Str("execution_id", executionID).Int("pr_number", trigger.PRNumber).Logger()
	logger.Info().Int("scenarios", len(recipe.Scenarios)).Msg("starting automation run")

	checkID, err := o.reporter.Create(ctx, o.cfg.GitHub.CheckName, trigger.HeadSHA)
	if err != nil {
		err = verrors.Wrap(err, "failed to create check run")
		// No check run exists to force terminal, but the PR still gets
		// its error notice.
		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		o.postErrorComment(cctx, trigger.PRNumber, err.Error(), logger)
		return err
	}
	run := &domain.CheckRun{ID: checkID, Status: constants.CheckStatusInProgress}

	var boundaryErr error
	result := &domain.ExecutionResult{ExecutionID: executionID}

	// The failure boundary: whatever happens below, the check run reaches
	// a terminal state and the run never takes down its caller.
	defer func() {
		if r := recover(); r != nil {
			boundaryErr = verrors.Wrapf(verrors.ErrCheckRunOperation, "run panicked: %v", r)
			logger.Error().Interface("panic", r).Msg("automation run panicked")
		}
		if !run.Completed() {
			o.forceComplete(run, trigger, boundaryErr, logger)
		}
		if err == nil {
			err = boundaryErr
		}
	}()

	started := o.clock.Now()
	store, err := o.stores(executionID)
	if err != nil {
		boundaryErr = verrors.Wrap(err, "failed to create artifact store")
		return boundaryErr
	}

	o.runScenarios(ctx, store, recipe, hints, result, logger)
	result.Duration = o.clock.Now().Sub(started)
	result.Tally()

	links, finalizeErr := o.finalize(ctx, run, store, result, logger)
	if finalizeErr != nil {
		boundaryErr = finalizeErr
		return boundaryErr
	}

	body := report.Render(result, links)
	if err := o.commenter.Comment(ctx, trigger.PRNumber, body); err != nil {
		return verrors.Wrap(err, "failed to post report comment")
	}

	logger.Info().
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Msg("automation run complete")
	return nil
}

// runScenarios executes the recipe sequentially, recovering the browser
// session between scenarios when it crashed. A scenario crash marks that
// scenario ERROR and the run continues.
func (o *Orchestrator) runScenarios(ctx context.Context, store *artifact.Store, recipe domain.TestRecipe, hints []domain.SelectorHint, result *domain.ExecutionResult, logger zerolog.Logger) {
	var (
		session   Session
		telemetry execute.TelemetrySource
		recording bool
	)
	defer func() {
		if session != nil {
			if recording {
				if _, err := session.StopRecording(ctx); err != nil {
					logger.Warn().Err(err).Msg("failed to stop screencast")
				}
			}
			session.Close()
		}
	}()

	for i, scenario := range recipe.Scenarios {
		if session == nil || !session.Healthy() {
			var err error
			session, telemetry, err = o.recoverSession(ctx, session, store, &recording, logger)
			if err != nil {
				logger.Error().Err(err).Msg("browser session unavailable, skipping remaining scenarios")
				o.skipRemaining(recipe.Scenarios[i:], result)
				return
			}
		}

		result.Scenarios = append(result.Scenarios, o.runOne(ctx, session, telemetry, store, scenario, hints, logger))

		if i < len(recipe.Scenarios)-1 {
			timeSleep(constants.InterScenarioGap)
		}
	}
}

// recoverSession closes a crashed session and creates a fresh one,
// restarting the screencast when recording was active.
func (o *Orchestrator) recoverSession(ctx context.Context, old Session, store *artifact.Store, recording *bool, logger zerolog.Logger) (Session, execute.TelemetrySource, error) {
	if old != nil {
		logger.Warn().Msg("browser session crashed, recreating")
		old.Close()
	}

	session, telemetry, err := o.sessions(ctx)
	if err != nil {
		return nil, nil, verrors.Wrap(verrors.ErrSessionUnavailable, err.Error())
	}
	store.Bind(session)

	if o.cfg.Browser.RecordVideo {
		if err := session.StartRecording(ctx, store.FramesDir()); err != nil {
			logger.Warn().Err(err).Msg("screencast unavailable, continuing without video")
			*recording = false
		} else {
			*recording = true
		}
	}
	return session, telemetry, nil
}

// runOne takes one scenario through synthesis, execution, and
// classification.
func (o *Orchestrator) runOne(ctx context.Context, session Session, telemetry execute.TelemetrySource, store *artifact.Store, scenario domain.TestScenario, hints []domain.SelectorHint, logger zerolog.Logger) domain.ScenarioResult {
	logger.Info().Str("scenario", scenario.Name).Msg("running scenario")

	plan := o.synth.Synthesize(ctx, scenario, hints)

	var capturer execute.Capturer
	if o.cfg.Browser.CaptureScreenshots {
		capturer = store
	}

	trace := o.engine.Execute(ctx, session, telemetry, capturer, plan)
	status, actual := o.classifier.Classify(ctx, trace, scenario.Expected)

	logger.Info().
		Str("scenario", scenario.Name).
		Str("status", string(status)).
		Int64("duration_ms", trace.DurationMs).
		Msg("scenario classified")

	res := domain.ScenarioResult{
		Scenario:       scenario,
		Status:         status,
		Expected:       scenario.Expected,
		DurationMs:     trace.DurationMs,
		ScreenshotPath: trace.ScreenshotPath,
		ConsoleLogs:    trace.ConsoleLogs,
		NetworkErrors:  trace.NetworkErrors,
	}
	if status == constants.ScenarioError {
		res.Error = actual
	} else {
		res.Actual = actual
	}
	return res
}

// skipRemaining marks every remaining scenario skipped.
func (o *Orchestrator) skipRemaining(scenarios []domain.TestScenario, result *domain.ExecutionResult) {
	for _, scenario := range scenarios {
		result.Scenarios = append(result.Scenarios, domain.ScenarioResult{
			Scenario: scenario,
			Status:   constants.ScenarioSkip,
			Expected: scenario.Expected,
			Actual:   "browser session unavailable",
		})
	}
}

// finalize encodes the run video and completes the check run
// concurrently, then assembles the report links.
func (o *Orchestrator) finalize(ctx context.Context, run *domain.CheckRun, store *artifact.Store, result *domain.ExecutionResult, logger zerolog.Logger) (report.Links, error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		videoPath, err := store.FinalizeVideo(gctx, o.encoder)
		if err != nil {
			logger.Warn().Err(err).Msg("video finalization failed, report will omit video")
			return nil
		}
		result.FullVideoPath = videoPath
		return nil
	})

	g.Go(func() error {
		conclusion := check.ConclusionFor(result)
		annotations := report.Annotations(result, "")
		if err := o.reporter.Update(gctx, run.ID, check.Update{
			Status:      constants.CheckStatusCompleted,
			Conclusion:  conclusion,
			Title:       fmt.Sprintf("%d/%d tests passed", result.Passed, result.TotalTests),
			Summary:     summaryLine(result, len(annotations)),
			Annotations: annotations,
		}); err != nil {
			return err
		}
		// The local run turns terminal only once the update is delivered,
		// so the failure boundary can still force completion on error.
		return check.Transition(run, constants.CheckStatusCompleted, conclusion)
	})

	if err := g.Wait(); err != nil {
		return report.Links{}, verrors.Wrap(err, "failed to complete check run")
	}

	links := report.Links{Screenshots: make(map[string]string, len(result.Scenarios))}
	links.Video = store.URL(result.FullVideoPath)
	for _, s := range result.Scenarios {
		if url := store.URL(s.ScreenshotPath); url != "" {
			links.Screenshots[s.Scenario.Name] = url
		}
	}
	return links, nil
}

// forceComplete drives the check run to a terminal failure state after an
// infrastructure error or panic, and leaves a best-effort error comment.
func (o *Orchestrator) forceComplete(run *domain.CheckRun, trigger Trigger, cause error, logger zerolog.Logger) {
	// A fresh context: the run context may already be canceled.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := check.Transition(run, constants.CheckStatusCompleted, constants.CheckConclusionFailure); err != nil {
		logger.Error().Err(err).Msg("failed to mark check run terminal")
		return
	}

	summary := "The automation run did not finish."
	if cause != nil {
		summary = fmt.Sprintf("The automation run did not finish: %v", cause)
	}
	if err := o.reporter.Update(ctx, run.ID, check.Update{
		Status:     run.Status,
		Conclusion: run.Conclusion,
		Title:      "Automation run failed",
		Summary:    summary,
	}); err != nil {
		logger.Error().Err(err).Msg("failed to complete check run after error")
	}

	o.postErrorComment(ctx, trigger.PRNumber, summary, logger)
}

// postErrorComment leaves the best-effort error notice on the PR.
func (o *Orchestrator) postErrorComment(ctx context.Context, prNumber int, summary string, logger zerolog.Logger) {
	if err := o.commenter.Comment(ctx, prNumber, "⚠️ Automated tests could not complete: "+summary); err != nil {
		logger.Warn().Err(err).Msg("failed to post error comment")
	}
}

// summaryLine writes the check-run summary, noting how many failure
// annotations the annotation limit dropped.
func summaryLine(result *domain.ExecutionResult, annotationCount int) string {
	var s string
	switch {
	case result.BlockingFailure():
		s = "A smoke or critical-path scenario failed. Do not merge."
	case result.Failed > 0:
		s = fmt.Sprintf("%d scenario(s) failed. Review the report comment for details.", result.Failed)
	case result.Skipped > 0:
		s = fmt.Sprintf("%d scenario(s) were skipped.", result.Skipped)
	default:
		s = "All scenarios passed."
	}
	if omitted := check.OmittedAnnotations(annotationCount); omitted > 0 {
		s += fmt.Sprintf(" %d failure annotation(s) were omitted; see the report comment for the full list.", omitted)
	}
	return s
}
