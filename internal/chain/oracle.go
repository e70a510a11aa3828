package chain

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
)

// NewOracle creates the balance oracle for the configured network. The
// returned cleanup function releases node connections.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewOracle(ctx context.Context, cfg config.Network) (ledger.BalanceOracle, func(), error) {
	switch cfg.Kind {
	case config.NetworkKindICON:
		oracle, err := NewICONOracle(cfg.RPCURLs, cfg.RequestTimeout)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create ICON balance oracle")
		}

		return oracle, func() {}, nil

	case config.NetworkKindEVM:
		dialCtx := ctx
		if cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()
		}

		client, err := NewRPCClient(dialCtx, cfg.RPCURLs)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create RPC client")
		}

		oracle, err := NewEVMOracle(dialCtx, client, cfg.ID)
		if err != nil {
			client.Close()
			return nil, nil, errors.Wrap(err, "failed to create EVM balance oracle")
		}

		return oracle, oracle.Close, nil

	default:
		return nil, nil, errors.Errorf("unsupported network kind %q", cfg.Kind)
	}
}
