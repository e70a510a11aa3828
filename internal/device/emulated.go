package device

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/ledger-login/internal/ledger"
	"golang.org/x/crypto/sha3"
)

// AddressFormat selects how a derived public key is rendered.
type AddressFormat string

const (
	// AddressFormatEVM renders 0x-prefixed EIP-55 addresses (keccak256 of the public key).
	AddressFormatEVM AddressFormat = "evm"
	// AddressFormatICON renders hx-prefixed addresses (sha3-256 of the public key).
	AddressFormatICON AddressFormat = "icon"
)

var ErrDeviceLocked = errors.New("emulated device is locked")

// EmulatedSigner derives addresses in software from a BIP39 seed. It stands in
// for a hardware device during development and in tests.
type EmulatedSigner struct {
	seed    *Seed
	format  AddressFormat
	latency time.Duration
}

type EmulatedOption func(*EmulatedSigner)

// WithAddressFormat sets the rendered address format. Defaults to AddressFormatEVM.
func WithAddressFormat(format AddressFormat) EmulatedOption {
	return func(s *EmulatedSigner) {
		s.format = format
	}
}

// WithLatency delays every derivation, approximating a device round trip.
func WithLatency(latency time.Duration) EmulatedOption {
	return func(s *EmulatedSigner) {
		s.latency = latency
	}
}

func NewEmulatedSigner(seed *Seed, opts ...EmulatedOption) *EmulatedSigner {
	s := &EmulatedSigner{
		seed:   seed,
		format: AddressFormatEVM,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OpenSession implements ledger.HardwareSigner.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func (s *EmulatedSigner) OpenSession(_ context.Context) (ledger.Session, error) {
	seed := s.seed.Bytes()
	if seed == nil {
		return nil, ledger.TransportError(ErrDeviceLocked)
	}
	defer clear(seed)

	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, ledger.TransportError(errors.Wrap(err, "failed to create master key"))
	}

	return &emulatedSession{signer: s, master: masterKey}, nil
}

type emulatedSession struct {
	signer *EmulatedSigner

	mu     sync.Mutex
	master *bip32.Key
}

func (s *emulatedSession) DeriveAddress(ctx context.Context, path string) (string, error) {
	if s.signer.latency > 0 {
		select {
		case <-time.After(s.signer.latency):
		case <-ctx.Done():
			return "", ledger.DeviceError(ctx.Err())
		}
	}

	indices, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return "", ledger.DeviceError(errors.Wrapf(err, "invalid derivation path %q", path))
	}

	s.mu.Lock()
	key := s.master
	s.mu.Unlock()

	if key == nil {
		return "", ledger.DeviceError(errors.New("session is closed"))
	}

	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return "", ledger.DeviceError(errors.Wrapf(err, "failed to derive child key at index %d", index))
		}
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return "", ledger.DeviceError(errors.Wrap(err, "failed to convert to ECDSA private key"))
	}

	return formatAddress(s.signer.format, &privateKey.PublicKey)
}

func (s *emulatedSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.master != nil {
		clear(s.master.Key)
		s.master = nil
	}

	return nil
}

func formatAddress(format AddressFormat, pub *ecdsa.PublicKey) (string, error) {
	switch format {
	case AddressFormatEVM:
		return crypto.PubkeyToAddress(*pub).Hex(), nil
	case AddressFormatICON:
		// Uncompressed key without the 0x04 marker.
		digest := sha3.Sum256(crypto.FromECDSAPub(pub)[1:])
		return "hx" + hex.EncodeToString(digest[len(digest)-20:]), nil
	default:
		return "", ledger.DeviceError(errors.Errorf("unsupported address format %q", format))
	}
}
