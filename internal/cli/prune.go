package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verityhq/verity/internal/artifact"
	"github.com/verityhq/verity/internal/config"
)

// newPruneCmd creates the prune command: remove run artifacts older than
// the retention window.
func newPruneCmd(loggerFn func() zerolog.Logger) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove expired run artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFn()

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}

			retention := olderThan
			if retention == 0 {
				retention = cfg.Artifacts.Retention
			}
			return artifact.Prune(cfg.Artifacts.Dir, retention, logger)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention override (default: artifacts.retention from config)")
	return cmd
}
