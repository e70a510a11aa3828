package probe

import (
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/util/command"
)

const (
	verboseFlag string = "verbose"
	addressFlag string = "address"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newDevice(),
		newRPC(),
	)
}
