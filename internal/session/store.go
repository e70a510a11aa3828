package session

import (
	"context"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
)

var ErrNoSession = errors.New("no active session")

// Session is the logged-in identity.
type Session struct {
	ID             string    `json:"id"`
	Address        string    `json:"address"`
	DerivationPath string    `json:"derivation_path"`
	WalletKind     string    `json:"wallet_kind"`
	LoggedInAt     time.Time `json:"logged_in_at"`
}

// Store keeps at most one session in memory. It implements ledger.IdentitySession.
type Store struct {
	clock time2.Clock

	mu      sync.RWMutex
	current *Session
}

func NewStore(clock time2.Clock) *Store {
	return &Store{clock: clock}
}

// Login replaces any active session with one for identity.
func (s *Store) Login(ctx context.Context, identity ledger.Identity) error {
	if identity.Address == "" {
		return errors.New("identity has no address")
	}

	next := &Session{
		ID:             uuid.NewString(),
		Address:        identity.Address,
		DerivationPath: identity.DerivationPath,
		WalletKind:     identity.WalletKind,
		LoggedInAt:     s.clock.Now().UTC(),
	}

	s.mu.Lock()
	previous := s.current
	s.current = next
	s.mu.Unlock()

	log := util.LogFromContext(ctx).With().Str("session_id", next.ID).Str("address", next.Address).Logger()
	if previous != nil {
		log.Info().Str("previous_session_id", previous.ID).Msg("Session replaced")
	} else {
		log.Info().Msg("Session started")
	}

	return nil
}

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Session{}, false
	}

	return *s.current, true
}

// Logout ends the active session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	previous := s.current
	s.current = nil
	s.mu.Unlock()

	if previous == nil {
		return ErrNoSession
	}

	util.LogFromContext(ctx).Info().Str("session_id", previous.ID).
		Dur("duration", s.clock.Now().Sub(previous.LoggedInAt)).Msg("Session ended")

	return nil
}
