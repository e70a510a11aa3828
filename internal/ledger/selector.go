package ledger

import (
	"context"

	"github/chapool/ledger-login/internal/util"

	"github.com/pkg/errors"
)

// ErrPathMismatch is reported (as ErrNotFound) when the supplied path does not
// belong to the loaded record for the address.
var ErrPathMismatch = errors.New("derivation path does not match loaded record")

// Selector marks a loaded address as the active login identity.
type Selector struct {
	pages    *Controller
	identity IdentitySession
	notifier NotificationSink
	recorder Recorder
}

// NewSelector creates a selector over the records loaded by pages.
func NewSelector(pages *Controller, identity IdentitySession, notifier NotificationSink, recorder Recorder) *Selector {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Selector{
		pages:    pages,
		identity: identity,
		notifier: notifier,
		recorder: recorder,
	}
}

// SelectAddress logs in with the loaded record for address. An empty path
// means the record's own derivation path. Every failure is notified exactly
// once and returned as a *SelectError.
func (s *Selector) SelectAddress(ctx context.Context, address string, path string) (Identity, error) {
	log := util.LogFromContext(ctx).With().
		Str("component", "ledger_selector").
		Str("address", address).
		Logger()

	record, err := s.pages.acquire(address, path)
	if err != nil {
		if errors.Is(err, ErrPathMismatch) {
			log.Debug().Str("path", path).Msg("Rejecting selection with foreign derivation path")
		}
		return Identity{}, s.reject(ctx, address, err)
	}
	defer s.pages.release(record.Address)

	identity := Identity{
		Address:        record.Address,
		DerivationPath: record.DerivationPath,
		WalletKind:     WalletKindLedger,
	}

	if err := s.identity.Login(ctx, identity); err != nil {
		log.Error().Err(err).Msg("Failed to log in with selected address")
		s.recorder.ObserveSelection(OutcomeFailure)
		s.notifier.Error(ctx, Notification{
			Title:   MessageError,
			Message: err.Error(),
			Timeout: NotificationTimeout,
		})

		return Identity{}, &SelectError{Address: address, Err: err}
	}

	log.Info().Int("index", record.Index).Msg("Logged in with hardware wallet address")
	s.recorder.ObserveSelection(OutcomeSuccess)
	s.notifier.Success(ctx, Notification{
		Title:   MessageLoginSuccess,
		Timeout: NotificationTimeout,
	})

	return identity, nil
}

func (s *Selector) reject(ctx context.Context, address string, cause error) error {
	err := &SelectError{Address: address, Err: cause}

	s.recorder.ObserveSelection(OutcomeNotFound)
	s.notifier.Error(ctx, Notification{
		Title:   MessageError,
		Message: err.Error(),
		Timeout: NotificationTimeout,
	})

	return err
}
