package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verityhq/verity/internal/config"
	"github.com/verityhq/verity/internal/constants"
	"github.com/verityhq/verity/internal/recipe"
)

// newValidateCmd creates the validate command: check configuration and
// recipe without touching the browser or GitHub.
func newValidateCmd(loggerFn func() zerolog.Logger) *cobra.Command {
	var recipePath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and the test recipe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFn()

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			logger.Debug().Bool("automation_enabled", cfg.Automation.Enabled).Msg("configuration loaded")

			rec, err := recipe.Load(recipePath)
			if err != nil {
				return fmt.Errorf("recipe invalid: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration valid\n")
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Recipe valid: %d scenario(s)\n", len(rec.Scenarios))
			for _, s := range rec.Scenarios {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s)\n", s.Name, s.ParsedPriority().Label())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recipePath, "recipe", constants.DefaultRecipePath, "path to the test recipe")
	return cmd
}
