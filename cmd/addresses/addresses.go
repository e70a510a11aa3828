package addresses

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util/command"
)

const (
	pageFlag    string = "page"
	addressFlag string = "address"
	pathFlag    string = "path"

	balanceDigits = 6
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("addresses",
		newList(),
		newSelect(),
	)
}

// loadPage drives the page controller to page and waits for the outcome.
func loadPage(ctx context.Context, s *api.Server, page int) ([]ledger.AddressRecord, error) {
	if page < 0 || page > ledger.MaxPage {
		return nil, errors.Wrapf(ledger.ErrInvalidPage, "page must be between 0 and %d", ledger.MaxPage)
	}

	<-s.Pages.SelectPage(ctx, page)

	state := s.Pages.State()
	if state.LastError != "" {
		return nil, errors.Errorf("failed to load page %d: %s", page, state.LastError)
	}

	if state.CurrentPage != page {
		return nil, errors.Errorf("page %d was not loaded", page)
	}

	return s.Pages.Records(), nil
}

func printRecords(w io.Writer, records []ledger.AddressRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tPATH\tADDRESS\tBALANCE")

	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Index, r.DerivationPath, r.Address, ledger.FormatDisplay(r.Balance, balanceDigits))
	}

	return errors.Wrap(tw.Flush(), "failed to print addresses")
}
