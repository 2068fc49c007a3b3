package artifact

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/verityhq/verity/internal/constants"
	verrors "github.com/verityhq/verity/internal/errors"
)

// Server serves the artifact root over HTTP so report links resolve.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger zerolog.Logger
}

// NewServer builds a read-only file server for root listening on addr.
func NewServer(root, addr string, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug().
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("artifact request")
			return nil
		},
	}))

	e.Static(constants.ArtifactRoutePrefix, root)

	return &Server{echo: e, addr: addr, logger: logger}
}

// Start blocks serving artifacts until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.addr).Msg("artifact server listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return verrors.Wrap(err, "artifact server failed")
	}
	return nil
}

// Shutdown stops the server, waiting briefly for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
