package addresses

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/util/command"
)

func newList() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Derives one page of addresses and prints their balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				records, err := loadPage(ctx, s, page)
				if err != nil {
					return err
				}

				return printRecords(cmd.OutOrStdout(), records)
			})
		},
	}

	cmd.Flags().IntVar(&page, pageFlag, 0, "Zero based page of five derivation indices")

	return cmd
}
