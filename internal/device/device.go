package device

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/keystore"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
)

// New creates the signer selected by cfg.Kind. The returned cleanup function
// wipes key material held by an emulated device.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func New(ctx context.Context, cfg config.Device, network config.Network) (ledger.HardwareSigner, func(), error) {
	log := util.LogFromContext(ctx)

	switch cfg.Kind {
	case config.DeviceKindLedger:
		if network.Kind != config.NetworkKindEVM {
			return nil, nil, errors.Wrapf(config.ErrLedgerRequiresEVM, "network %q is %s", network.Name, network.Kind)
		}

		signer, err := NewLedgerSigner()
		if err != nil {
			return nil, nil, err
		}

		return signer, func() {}, nil

	case config.DeviceKindEmulated:
		mnemonic, err := emulatorMnemonic(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		format := AddressFormatEVM
		if network.Kind == config.NetworkKindICON {
			format = AddressFormatICON
		}

		seed := NewSeed(mnemonic, "")
		log.Info().Str("format", string(format)).Msg("Using emulated device")

		return NewEmulatedSigner(seed, WithAddressFormat(format)), seed.Clear, nil

	default:
		return nil, nil, errors.Errorf("unsupported device kind %q", cfg.Kind)
	}
}

func emulatorMnemonic(ctx context.Context, cfg config.Device) (string, error) {
	if cfg.EmulatorMnemonic != "" {
		return cfg.EmulatorMnemonic, nil
	}

	if cfg.EmulatorKeystore == "" {
		return "", errors.New("emulated device requires a keystore file or a mnemonic")
	}

	mnemonic, err := keystore.NewStore(cfg.EmulatorKeystore).DecryptMnemonic(ctx, cfg.EmulatorPassword)
	if err != nil {
		return "", errors.Wrap(err, "failed to unlock emulator keystore")
	}

	return mnemonic, nil
}
