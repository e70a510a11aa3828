package keystore

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/util/command"
	"golang.org/x/term"
)

// SecretReader reads one line of input without echoing it.
type SecretReader func(prompt string) (string, error)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newCreate(promptSecret),
	)
}

// promptSecret prompts on stderr and reads the answer from the terminal with echo disabled.
//
//nolint:forbidigo // Password input requires direct terminal I/O
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", errors.Wrap(err, "failed to read from terminal")
	}

	fmt.Fprintln(os.Stderr)

	return string(secret), nil
}
