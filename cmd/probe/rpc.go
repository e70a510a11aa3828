package probe

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/chain"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
	"github/chapool/ledger-login/internal/util/command"
)

func newRPC() *cobra.Command {
	var (
		verbose bool
		address string
	)

	cmd := &cobra.Command{
		Use:   "rpc",
		Short: "Queries one balance from the configured node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg.Logger)

			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			ctx := util.LogToContext(cmd.Context(), log.Logger)
			return runRPCProbe(ctx, cmd.OutOrStdout(), cfg.Network, address, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, verboseFlag, "v", false, "Show the network and queried address")
	cmd.Flags().StringVar(&address, addressFlag, "", "Address to query (defaults to the zero address of the network)")

	return cmd
}

func zeroAddress(network config.Network) string {
	if network.Kind == config.NetworkKindICON {
		return "hx" + strings.Repeat("0", 40)
	}

	return "0x" + strings.Repeat("0", 40)
}

func runRPCProbe(ctx context.Context, out io.Writer, network config.Network, address string, verbose bool) error {
	oracle, cleanup, err := chain.NewOracle(ctx, network)
	if err != nil {
		return errors.Wrap(err, "failed to create balance oracle")
	}
	defer cleanup()

	if address == "" {
		address = zeroAddress(network)
	}

	balance, err := oracle.GetBalance(ctx, address)
	if err != nil {
		return errors.Wrap(err, "rpc probe failed")
	}

	display := ledger.FormatDisplay(ledger.ToDisplay(balance, network.Decimals), int(network.Decimals))

	if verbose {
		fmt.Fprintf(out, "%s\t%s\t%s\n", network.Name, address, display)
		return nil
	}

	fmt.Fprintln(out, display)

	return nil
}
