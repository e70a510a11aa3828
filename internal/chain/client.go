package chain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RPCClient wraps ethclient with several node URLs and fails over between them.
type RPCClient struct {
	urls    []string
	clients []*ethclient.Client
	mu      sync.Mutex
	current int // index of the last healthy client
}

// NewRPCClient dials every URL. Unreachable nodes are retried on use; at
// least one dial must succeed.
func NewRPCClient(ctx context.Context, urls []string) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, 0, len(urls))
	for _, url := range urls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			clients = append(clients, nil)
			continue
		}
		clients = append(clients, client)
	}

	if allClientsNil(clients) {
		return nil, errors.New("failed to connect to any RPC node")
	}

	return &RPCClient{
		urls:    urls,
		clients: clients,
	}, nil
}

func allClientsNil(clients []*ethclient.Client) bool {
	for _, client := range clients {
		if client != nil {
			return false
		}
	}
	return true
}

// Close closes all client connections.
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// ChainID returns the chain id reported by the node.
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	var chainID *big.Int
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		chainID, err = client.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	return chainID, nil
}

// BalanceAt returns the balance of an address at the latest known block.
func (c *RPCClient) BalanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	var balance *big.Int
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		balance, err = client.BalanceAt(ctx, address, nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}

	return balance, nil
}

// do runs call against the current client and moves on to the next URL when
// the call fails. Context cancellation stops the failover.
func (c *RPCClient) do(ctx context.Context, call func(client *ethclient.Client) error) error {
	var lastErr error

	for attempt := range len(c.urls) {
		idx, client, err := c.client(ctx, attempt)
		if err != nil {
			lastErr = err
			continue
		}

		err = call(client)
		if err == nil {
			c.mu.Lock()
			c.current = idx
			c.mu.Unlock()
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		log.Warn().
			Str("url", c.urls[idx]).
			Err(err).
			Msg("RPC call failed, trying next node")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("all RPC clients are unavailable")
	}

	return lastErr
}

// client returns the client attempt steps past the current one, dialing it
// again if the initial connection failed.
func (c *RPCClient) client(ctx context.Context, attempt int) (int, *ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := (c.current + attempt) % len(c.clients)
	if c.clients[idx] != nil {
		return idx, c.clients[idx], nil
	}

	client, err := ethclient.DialContext(ctx, c.urls[idx])
	if err != nil {
		return idx, nil, errors.Wrapf(err, "failed to reconnect to %s", c.urls[idx])
	}
	c.clients[idx] = client

	return idx, client, nil
}
