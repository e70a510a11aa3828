//go:build wireinject

package api

import (
	"testing"

	"github.com/google/wire"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewClock,
	NewI18N,
	metrics.New,
	NewPathScheme,
	NewFetcher,
	NewNotificationFeed,
	NewNotificationSink,
	NewSessionStore,
	NewPages,
	NewSelector,
)

// InitNewServer returns a new Server instance talking to the configured device and network.
func InitNewServer(
	_ config.Server,
) (*Server, func(), error) {
	wire.Build(serviceSet, NewSigner, NewOracle, NoTest)
	return nil, nil, nil
}

// InitNewServerWithComponents returns a new Server instance using the given device and oracle.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithComponents(
	_ config.Server,
	_ ledger.HardwareSigner,
	_ ledger.BalanceOracle,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
