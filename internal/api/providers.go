package api

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github/chapool/ledger-login/internal/chain"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/device"
	"github/chapool/ledger-login/internal/i18n"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/metrics"
	"github/chapool/ledger-login/internal/notify"
	"github/chapool/ledger-login/internal/session"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NoTest is used by the non-test injector, the clock is real.
func NoTest() []*testing.T {
	return nil
}

// NewClock returns a mocked clock frozen at a fixed date when a test is given.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewClock(t ...*testing.T) time2.Clock {
	if len(t) > 0 && t[0] != nil {
		return time2.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	}

	return time2.DefaultClock
}

func NewI18N(cfg config.Server) (*i18n.Service, error) {
	return i18n.New(cfg.I18n)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSigner(cfg config.Server) (ledger.HardwareSigner, func(), error) {
	return device.New(context.Background(), cfg.Device, cfg.Network)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewOracle(cfg config.Server) (ledger.BalanceOracle, func(), error) {
	return chain.NewOracle(context.Background(), cfg.Network)
}

func NewPathScheme(cfg config.Server) (ledger.PathScheme, error) {
	return ledger.NewPathScheme(cfg.Network.DerivationBase, cfg.Network.HardenedLeaf)
}

func NewFetcher(cfg config.Server, signer ledger.HardwareSigner, oracle ledger.BalanceOracle, paths ledger.PathScheme) *ledger.Fetcher {
	return ledger.NewFetcher(signer, oracle, paths,
		ledger.WithDecimals(cfg.Network.Decimals),
		ledger.WithSessionTimeout(cfg.Device.SessionTimeout),
	)
}

func NewNotificationFeed(cfg config.Server, translator *i18n.Service, clock time2.Clock) *notify.Feed {
	return notify.NewFeed(translator, clock, cfg.Notifications.Capacity)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewNotificationSink(feed *notify.Feed) ledger.NotificationSink {
	return notify.Multi{feed, notify.LogSink{}}
}

func NewSessionStore(clock time2.Clock) *session.Store {
	return session.NewStore(clock)
}

func NewPages(fetcher *ledger.Fetcher, sink ledger.NotificationSink, recorder *metrics.Service) *ledger.Controller {
	return ledger.NewController(fetcher, sink, ledger.WithRecorder(recorder))
}

func NewSelector(pages *ledger.Controller, sessions *session.Store, sink ledger.NotificationSink, recorder *metrics.Service) *ledger.Selector {
	return ledger.NewSelector(pages, sessions, sink, recorder)
}
