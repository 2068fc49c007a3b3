package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verityhq/verity/internal/artifact"
	"github.com/verityhq/verity/internal/config"
	verrors "github.com/verityhq/verity/internal/errors"
)

// newServeCmd creates the serve command: host the artifact directory over
// HTTP so report links resolve.
func newServeCmd(loggerFn func() zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve run artifacts over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := loggerFn()

			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.Artifacts.ServeAddr == "" {
				return verrors.Wrap(verrors.ErrConfigInvalidArtifact, "artifacts.serve_addr is empty")
			}

			server := artifact.NewServer(cfg.Artifacts.Dir, cfg.Artifacts.ServeAddr, logger)

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx := context.Background()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Warn().Err(err).Msg("artifact server shutdown failed")
				}
			}()

			return server.Start()
		},
	}
}
