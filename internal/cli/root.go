package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalFlags are the persistent flags shared by all subcommands.
type globalFlags struct {
	Verbose bool
	Quiet   bool
}

// newRootCmd creates the root command. The function-based approach avoids
// package-level command globals and keeps subcommands testable.
func newRootCmd(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}
	var logger zerolog.Logger

	cmd := &cobra.Command{
		Use:   "verity",
		Short: "VERITY - AI-guided browser test automation",
		Long: `VERITY runs natural-language test recipes against a live preview
environment: it synthesizes browser action plans with AI, executes them in a
real browser, captures screenshots and video evidence, classifies outcomes,
and reports results as a GitHub check run and PR comment.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger = InitLogger(flags.Verbose, flags.Quiet)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "only log warnings and errors")

	loggerFn := func() zerolog.Logger { return logger }
	cmd.AddCommand(
		newRunCmd(loggerFn),
		newValidateCmd(loggerFn),
		newServeCmd(loggerFn),
		newPruneCmd(loggerFn),
	)
	return cmd
}

// Execute runs the CLI with the given build info.
func Execute(ctx context.Context, info BuildInfo) error {
	defer CloseLogFile()

	cmd := newRootCmd(info)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func formatVersion(info BuildInfo) string {
	version := info.Version
	if version == "" {
		version = "dev"
	}
	if info.Commit != "" {
		version += fmt.Sprintf(" (%s)", info.Commit)
	}
	if info.Date != "" {
		version += fmt.Sprintf(" built %s", info.Date)
	}
	return version
}
