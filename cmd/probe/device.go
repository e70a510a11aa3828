package probe

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/device"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
	"github/chapool/ledger-login/internal/util/command"
)

func newDevice() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Opens one device session and derives the first address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg.Logger)

			ctx := util.LogToContext(cmd.Context(), log.Logger)
			return runDeviceProbe(ctx, cmd.OutOrStdout(), cfg, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, verboseFlag, "v", false, "Show the derivation path and device kind")

	return cmd
}

func runDeviceProbe(ctx context.Context, out io.Writer, cfg config.Server, verbose bool) error {
	signer, cleanup, err := device.New(ctx, cfg.Device, cfg.Network)
	if err != nil {
		return errors.Wrap(err, "failed to create device signer")
	}
	defer cleanup()

	paths, err := ledger.NewPathScheme(cfg.Network.DerivationBase, cfg.Network.HardenedLeaf)
	if err != nil {
		return err
	}

	if cfg.Device.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Device.SessionTimeout)
		defer cancel()
	}

	session, err := signer.OpenSession(ctx)
	if err != nil {
		return errors.Wrap(err, "device probe failed")
	}
	defer session.Close()

	path := paths.Path(0)
	address, err := session.DeriveAddress(ctx, path)
	if err != nil {
		return errors.Wrap(err, "device probe failed")
	}

	if verbose {
		fmt.Fprintf(out, "%s\t%s\t%s\n", cfg.Device.Kind, path, address)
		return nil
	}

	fmt.Fprintln(out, address)

	return nil
}
