package device

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/usbwallet"
	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
)

var (
	ErrNoDevice   = errors.New("no Ledger device connected")
	ErrAppOffline = errors.New("Ethereum app is not open on the device")
)

// WalletSource lists the hardware wallets currently attached. *usbwallet.Hub
// satisfies it.
type WalletSource interface {
	Wallets() []accounts.Wallet
}

// LedgerSigner talks to a Ledger over USB HID. Only one session can hold the
// device at a time; further OpenSession calls wait for it to be released.
type LedgerSigner struct {
	source WalletSource
	slot   chan struct{}
}

// NewLedgerSigner creates a signer backed by the USB Ledger hub.
func NewLedgerSigner() (*LedgerSigner, error) {
	hub, err := usbwallet.NewLedgerHub()
	if err != nil {
		return nil, ledger.TransportError(errors.Wrap(err, "failed to start Ledger hub"))
	}

	return NewLedgerSignerWithSource(hub), nil
}

func NewLedgerSignerWithSource(source WalletSource) *LedgerSigner {
	return &LedgerSigner{
		source: source,
		slot:   make(chan struct{}, 1),
	}
}

// OpenSession implements ledger.HardwareSigner.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func (s *LedgerSigner) OpenSession(ctx context.Context) (ledger.Session, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ledger.TransportError(ctx.Err())
	}

	wallet, err := s.open(ctx)
	if err != nil {
		<-s.slot
		return nil, err
	}

	return &ledgerSession{wallet: wallet, release: func() { <-s.slot }}, nil
}

func (s *LedgerSigner) open(ctx context.Context) (accounts.Wallet, error) {
	log := util.LogFromContext(ctx)

	wallets := s.source.Wallets()
	if len(wallets) == 0 {
		return nil, ledger.TransportError(ErrNoDevice)
	}

	wallet := wallets[0]
	if err := wallet.Open(""); err != nil && !errors.Is(err, accounts.ErrWalletAlreadyOpen) {
		return nil, ledger.TransportError(errors.Wrapf(err, "failed to open %s", wallet.URL()))
	}

	status, err := wallet.Status()
	if err != nil {
		_ = wallet.Close()
		return nil, ledger.TransportError(errors.Wrap(err, "device reported failure"))
	}

	if strings.Contains(strings.ToLower(status), "offline") {
		_ = wallet.Close()
		return nil, ledger.TransportError(ErrAppOffline)
	}

	log.Debug().Str("url", wallet.URL().String()).Str("status", status).Msg("Ledger session opened")

	return wallet, nil
}

type ledgerSession struct {
	wallet  accounts.Wallet
	release func()
	once    sync.Once
}

func (s *ledgerSession) DeriveAddress(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ledger.DeviceError(err)
	}

	derivationPath, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return "", ledger.DeviceError(errors.Wrapf(err, "invalid derivation path %q", path))
	}

	account, err := s.wallet.Derive(derivationPath, false)
	if err != nil {
		return "", ledger.DeviceError(errors.Wrapf(err, "failed to derive %s", path))
	}

	return account.Address.Hex(), nil
}

func (s *ledgerSession) Close() error {
	var err error
	s.once.Do(func() {
		defer s.release()
		err = s.wallet.Close()
	})

	if err != nil {
		return errors.Wrap(err, "failed to close Ledger")
	}

	return nil
}
