package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/ledger"
)

// EVMOracle reads native balances (wei) via eth_getBalance.
type EVMOracle struct {
	client *RPCClient
}

// NewEVMOracle creates an oracle over client. If expectedChainID is non-zero
// the node must report the same chain id.
func NewEVMOracle(ctx context.Context, client *RPCClient, expectedChainID int64) (*EVMOracle, error) {
	if expectedChainID != 0 {
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return nil, err
		}

		if chainID.Cmp(big.NewInt(expectedChainID)) != 0 {
			return nil, errors.Errorf("RPC node serves chain %s, expected %d", chainID, expectedChainID)
		}
	}

	return &EVMOracle{client: client}, nil
}

// GetBalance implements ledger.BalanceOracle.
func (o *EVMOracle) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, ledger.NetworkError(errors.Errorf("invalid EVM address %q", address))
	}

	balance, err := o.client.BalanceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return nil, ledger.NetworkError(err)
	}

	return balance, nil
}

// Close releases the node connections.
func (o *EVMOracle) Close() {
	o.client.Close()
}
