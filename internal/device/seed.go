package device

import (
	"crypto/sha512"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// Seed holds the BIP39 seed backing an emulated device.
type Seed struct {
	mu   sync.RWMutex
	seed []byte
}

// NewSeed converts mnemonic and passphrase into a BIP39 seed:
// PBKDF2(mnemonic, "mnemonic" + passphrase, 2048, 64, SHA512).
func NewSeed(mnemonic string, passphrase string) *Seed {
	const (
		pbkdf2Iterations = 2048 // BIP39 standard iterations
		pbkdf2KeyLength  = 64   // BIP39 standard key length (512 bits)
	)

	normalized := strings.Join(strings.Fields(mnemonic), " ")

	return &Seed{
		seed: pbkdf2.Key(
			[]byte(normalized),
			[]byte("mnemonic"+passphrase),
			pbkdf2Iterations,
			pbkdf2KeyLength,
			sha512.New,
		),
	}
}

// Bytes returns a copy of the seed, or nil once cleared.
func (s *Seed) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.seed == nil {
		return nil
	}

	seedCopy := make([]byte, len(s.seed))
	copy(seedCopy, s.seed)
	return seedCopy
}

// Clear zeroes the seed. Sessions opened afterwards fail.
func (s *Seed) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.seed {
		s.seed[i] = 0
	}
	s.seed = nil
}
