package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/util"
)

// NewSubcommandGroup returns a command that only groups subCommands and prints its help.
func NewSubcommandGroup(use string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s related subcommands", use),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// SetupLogger configures the global zerolog logger.
func SetupLogger(cfg config.LoggerServer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = "15:04:05"
		}))
	}

	if cfg.Caller {
		log.Logger = log.With().Caller().Logger()
	}
}

// WithServer initializes every server component (without router), runs f and
// releases the device and node connections afterwards.
func WithServer(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	SetupLogger(cfg.Logger)

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	s, cleanup, err := api.InitNewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}
	defer cleanup()

	ctx = util.LogToContext(ctx, log.Logger)

	return f(ctx, s)
}
