package keystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/device"
	"github/chapool/ledger-login/internal/keystore"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
	"github/chapool/ledger-login/internal/util/command"
)

const (
	fileFlag  string = "file"
	lightFlag string = "light"

	minPasswordLength = 8
)

var ErrInvalidMnemonic = errors.New("mnemonic must have 12, 15, 18, 21 or 24 words")

func newCreate(read SecretReader) *cobra.Command {
	var (
		file  string
		light bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Encrypts a mnemonic into a keystore file for the emulated device",
		Long: `Encrypts a BIP39 mnemonic with a password into a keystore v3 file.
The emulated device unlocks it with LEDGER_DEVICE_EMULATOR_KEYSTORE and
LEDGER_DEVICE_EMULATOR_PASSWORD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg.Logger)

			if file == "" {
				file = cfg.Device.EmulatorKeystore
			}
			if file == "" {
				return errors.Errorf("--%s is required when LEDGER_DEVICE_EMULATOR_KEYSTORE is unset", fileFlag)
			}

			var opts []keystore.Option
			if light {
				opts = append(opts, keystore.WithScryptParams(keystore.LightScryptParams()))
			}

			ctx := util.LogToContext(cmd.Context(), log.Logger)
			address, err := createKeystore(ctx, cfg, keystore.NewStore(file, opts...), read)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Keystore written to %s, first address %s\n", file, address)

			return nil
		},
	}

	cmd.Flags().StringVar(&file, fileFlag, "", "Keystore file to create (defaults to LEDGER_DEVICE_EMULATOR_KEYSTORE)")
	cmd.Flags().BoolVar(&light, lightFlag, false, "Use the light scrypt parameters (development only)")

	return cmd
}

// createKeystore writes the keystore and unlocks it again through the emulated
// device, returning the address at index 0 of the configured network.
func createKeystore(ctx context.Context, cfg config.Server, store *keystore.Store, read SecretReader) (string, error) {
	exists, err := store.Exists()
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.Wrap(keystore.ErrKeystoreExists, store.Path())
	}

	mnemonic, err := read("Enter mnemonic: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read mnemonic")
	}

	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	switch len(strings.Fields(mnemonic)) {
	case 12, 15, 18, 21, 24:
	default:
		return "", ErrInvalidMnemonic
	}

	password, err := read(fmt.Sprintf("Enter password for keystore (min %d characters): ", minPasswordLength))
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}

	if len(password) < minPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	passwordConfirm, err := read("Confirm password: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read password confirmation")
	}

	if password != passwordConfirm {
		return "", errors.New("passwords do not match")
	}

	if _, err := store.Create(ctx, mnemonic, password); err != nil {
		return "", errors.Wrap(err, "failed to create keystore")
	}

	return firstAddress(ctx, cfg, store.Path(), password)
}

func firstAddress(ctx context.Context, cfg config.Server, file string, password string) (string, error) {
	deviceCfg := cfg.Device
	deviceCfg.Kind = config.DeviceKindEmulated
	deviceCfg.EmulatorKeystore = file
	deviceCfg.EmulatorPassword = password
	deviceCfg.EmulatorMnemonic = ""

	signer, cleanup, err := device.New(ctx, deviceCfg, cfg.Network)
	if err != nil {
		return "", errors.Wrap(err, "failed to unlock the new keystore")
	}
	defer cleanup()

	paths, err := ledger.NewPathScheme(cfg.Network.DerivationBase, cfg.Network.HardenedLeaf)
	if err != nil {
		return "", err
	}

	session, err := signer.OpenSession(ctx)
	if err != nil {
		return "", err
	}
	defer session.Close()

	return session.DeriveAddress(ctx, paths.Path(0))
}
