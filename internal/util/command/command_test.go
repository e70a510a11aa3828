package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/test"
	"github/chapool/ledger-login/internal/util/command"
)

func TestWithServer(t *testing.T) {
	cfg := test.DefaultTestConfig(t)
	cfg.Logger.PrettyPrintConsole = false
	cfg.Network = config.Network{
		Name:           config.NetworkICONTestnet,
		Kind:           config.NetworkKindICON,
		ID:             53,
		RPCURLs:        []string{"http://127.0.0.1:0/api/v3"},
		Decimals:       ledger.DefaultDecimals,
		DerivationBase: ledger.ICONBasePath,
		HardenedLeaf:   true,
	}
	cfg.Device = config.Device{
		Kind:             config.DeviceKindEmulated,
		EmulatorMnemonic: "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
	}

	var testError = errors.New("test error")

	resultErr := command.WithServer(t.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		assert.True(t, s.Ready())

		session, err := s.Signer.OpenSession(ctx)
		require.NoError(t, err)
		defer session.Close()

		address, err := session.DeriveAddress(ctx, ledger.ICONPathScheme().Path(0))
		require.NoError(t, err)
		assert.Regexp(t, "^hx[0-9a-f]{40}$", address)

		return testError
	})

	assert.Equal(t, testError, resultErr)
}

func TestWithServerInvalidConfig(t *testing.T) {
	cfg := test.DefaultTestConfig(t)
	cfg.Device = config.Device{Kind: config.DeviceKindEmulated}

	err := command.WithServer(t.Context(), cfg, func(context.Context, *api.Server) error {
		t.Fatal("must not be called")
		return nil
	})
	require.Error(t, err)
}

func TestNewSubcommandGroup(t *testing.T) {
	var ran bool
	group := command.NewSubcommandGroup("probe", &cobra.Command{
		Use: "device",
		RunE: func(*cobra.Command, []string) error {
			ran = true
			return nil
		},
	})

	group.SetArgs([]string{"device"})
	require.NoError(t, group.Execute())
	assert.True(t, ran)
	assert.Equal(t, "probe related subcommands", group.Short)
}
