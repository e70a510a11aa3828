package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/util"
)

var (
	ErrKeystoreExists   = errors.New("keystore already exists")
	ErrKeystoreNotFound = errors.New("keystore not found")
)

// Store keeps one encrypted mnemonic in a keystore v3 JSON file.
type Store struct {
	path   string
	params ScryptParams
}

type Option func(*Store)

// WithScryptParams overrides the KDF cost used by Create.
func WithScryptParams(params ScryptParams) Option {
	return func(s *Store) {
		s.params = params
	}
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		params: StandardScryptParams(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Path() string {
	return s.path
}

// Exists checks if the keystore file exists
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, errors.Wrap(err, "failed to stat keystore")
}

// Create encrypts mnemonic with password and writes it. An existing keystore is never overwritten.
func (s *Store) Create(ctx context.Context, mnemonic string, password string) (*KeystoreJSON, error) {
	log := util.LogFromContext(ctx)

	exists, err := s.Exists()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrKeystoreExists
	}

	ks, err := encryptMnemonic(mnemonic, password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt mnemonic")
		return nil, err
	}

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to write keystore")
		return nil, err
	}

	log.Info().Str("path", s.path).Str("id", ks.ID).Msg("Keystore created")

	return ks, nil
}

// Load reads the keystore file.
func (s *Store) Load() (*KeystoreJSON, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeystoreNotFound
		}
		return nil, errors.Wrap(err, "failed to read keystore")
	}

	var ks KeystoreJSON
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	return &ks, nil
}

// DecryptMnemonic loads the keystore and decrypts the mnemonic.
func (s *Store) DecryptMnemonic(ctx context.Context, password string) (string, error) {
	ks, err := s.Load()
	if err != nil {
		return "", err
	}

	mnemonic, err := decryptMnemonic(ks, password)
	if err != nil {
		util.LogFromContext(ctx).Error().Err(err).Msg("Failed to decrypt mnemonic")
		return "", err
	}

	return mnemonic, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "failed to create keystore directory")
	}

	tmp, err := os.CreateTemp(dir, ".keystore-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errors.Wrap(err, "failed to chmod keystore")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "failed to move keystore into place")
	}

	return nil
}
