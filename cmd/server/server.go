package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/router"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the HTTP server serving the address pages, the
selection endpoint and the notification feed.

Requires configuration through ENV.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), config.DefaultServiceConfigFromEnv())
		},
	}
}

func runServer(ctx context.Context, cfg config.Server) error {
	return command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
		if err := router.Init(s); err != nil {
			return errors.Wrap(err, "failed to initialize router")
		}

		errs := make(chan error, 1)
		go func() {
			if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
			close(errs)
		}()

		log.Info().Str("listen_address", cfg.Echo.ListenAddress).Str("network", cfg.Network.Name).Msg("Server started")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err, ok := <-errs:
			if ok {
				return errors.Wrap(err, "failed to start server")
			}
			return nil
		case <-quit:
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Echo.ShutdownTimeout)
		defer cancel()

		if shutdownErrs := s.Shutdown(shutdownCtx); len(shutdownErrs) > 0 {
			return errors.Errorf("failed to shut down server gracefully: %v", shutdownErrs)
		}

		return nil
	})
}
