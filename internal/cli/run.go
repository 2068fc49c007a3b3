package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verityhq/verity/internal/ai"
	"github.com/verityhq/verity/internal/artifact"
	"github.com/verityhq/verity/internal/browser"
	"github.com/verityhq/verity/internal/check"
	"github.com/verityhq/verity/internal/classify"
	"github.com/verityhq/verity/internal/config"
	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/execute"
	"github.com/verityhq/verity/internal/orchestrate"
	"github.com/verityhq/verity/internal/recipe"
	"github.com/verityhq/verity/internal/synth"
)

// runFlags holds the run command's flags.
type runFlags struct {
	prNumber   int
	headSHA    string
	recipePath string
	hintsPath  string
	labels     []string
	deliveryID string
	baseURL    string
	needsQA    bool
}

// newRunCmd creates the run command: execute a recipe against the preview
// environment and report results to the pull request.
func newRunCmd(loggerFn func() zerolog.Logger) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test recipe and report results to a pull request",
		Long: `Run loads the test recipe, synthesizes a browser action plan for each
scenario, executes the plans sequentially in a headless browser, classifies
the outcomes, and reports a check run plus a single report comment to the
pull request.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), flags, loggerFn())
		},
	}

	cmd.Flags().IntVar(&flags.prNumber, "pr", 0, "pull request number to report to (required)")
	cmd.Flags().StringVar(&flags.headSHA, "sha", "", "head commit SHA for the check run (default: resolved from the PR)")
	cmd.Flags().StringVar(&flags.recipePath, "recipe", constants.DefaultRecipePath, "path to the test recipe")
	cmd.Flags().StringVar(&flags.hintsPath, "hints", "", "path to a selector hints JSON file")
	cmd.Flags().StringSliceVar(&flags.labels, "labels", nil, "labels present on the pull request")
	cmd.Flags().StringVar(&flags.deliveryID, "delivery-id", "", "delivery event id for deduplication")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "override the preview base URL")
	cmd.Flags().BoolVar(&flags.needsQA, "needs-qa", true, "whether the upstream analysis requested a QA run")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}

func runRun(ctx context.Context, flags *runFlags, logger zerolog.Logger) error {
	overrides := map[string]any{}
	if flags.baseURL != "" {
		overrides["automation.base_url"] = flags.baseURL
	}
	cfg, err := config.LoadWithOverrides(ctx, overrides)
	if err != nil {
		return err
	}

	rec, err := recipe.Load(flags.recipePath)
	if err != nil {
		return err
	}

	hintList, err := recipe.LoadHints(flags.hintsPath)
	if err != nil {
		logger.Warn().Err(err).Msg("selector hints unavailable, continuing without them")
	}

	reporter := check.NewCLIReporter(cfg.GitHub.Repo, logger)

	headSHA := flags.headSHA
	if headSHA == "" {
		headSHA, err = reporter.ResolveHeadSHA(ctx, flags.prNumber)
		if err != nil {
			return err
		}
	}

	orch := buildOrchestrator(cfg, reporter, logger)
	trigger := orchestrate.Trigger{
		PRNumber:   flags.prNumber,
		HeadSHA:    headSHA,
		Labels:     flags.labels,
		DeliveryID: flags.deliveryID,
		NeedsQA:    flags.needsQA,
	}

	// The CLI is the synchronous entry point; Start exists for callers
	// that must not wait, like webhook handlers.
	return orch.Run(ctx, trigger, rec, hintList)
}

// buildOrchestrator wires the full pipeline from configuration.
func buildOrchestrator(cfg *config.Config, reporter *check.CLIReporter, logger zerolog.Logger) *orchestrate.Orchestrator {
	client := ai.NewCLIClient(cfg.AI, logger)

	sessionFactory := browser.NewFactory(browser.Options{
		Headless:   cfg.Browser.Headless,
		ChromePath: cfg.Browser.ChromePath,
	}, logger)

	sessions := func(ctx context.Context) (orchestrate.Session, execute.TelemetrySource, error) {
		session, err := sessionFactory(ctx)
		if err != nil {
			return nil, nil, err
		}
		return session, session.Telemetry(), nil
	}

	stores := func(executionID string) (*artifact.Store, error) {
		return artifact.NewStore(cfg.Artifacts.Dir, executionID, cfg.Artifacts.BaseURL, logger)
	}

	return orchestrate.New(orchestrate.Deps{
		Config:     cfg,
		Synth:      synth.New(client, cfg.Automation.BaseURL, logger),
		Engine:     execute.New(cfg.Automation.BaseURL, cfg.Browser.ActionTimeout, cfg.Browser.SlowMotion, logger),
		Classifier: classify.New(client, logger),
		Reporter:   reporter,
		Commenter:  reporter,
		Sessions:   sessions,
		Stores:     stores,
		Encoder:    &artifact.FFmpegEncoder{},
		Logger:     logger,
	})
}
