package addresses

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/util/command"
)

func newSelect() *cobra.Command {
	var (
		page    int
		address string
		path    string
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Loads a page and logs in with one of its addresses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				if _, err := loadPage(ctx, s, page); err != nil {
					return err
				}

				identity, err := s.Selector.SelectAddress(ctx, address, path)
				if err != nil {
					return err
				}

				current, _ := s.Sessions.Current()
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), session %s\n", identity.Address, identity.DerivationPath, current.ID)

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, pageFlag, 0, "Zero based page containing the address")
	cmd.Flags().StringVar(&address, addressFlag, "", "Address to log in with")
	cmd.Flags().StringVar(&path, pathFlag, "", "Expected derivation path of the address (optional)")
	_ = cmd.MarkFlagRequired(addressFlag)

	return cmd
}
