package chain_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/chain"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
)

const (
	evmAddress  = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
	iconAddress = "hx6e1dd0d4432620778b54b2bbc21ac3df961adf89"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newEVMNode serves eth_chainId and eth_getBalance.
func newEVMNode(t *testing.T, chainID string, balances map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		res := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			res["result"] = chainID
		case "eth_getBalance":
			var address string
			require.NoError(t, json.Unmarshal(req.Params[0], &address))
			balance, ok := balances[strings.ToLower(address)]
			if !ok {
				res["error"] = map[string]any{"code": -32000, "message": "unknown account"}
			} else {
				res["result"] = balance
			}
		default:
			res["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(res))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestEVMOracleGetBalance(t *testing.T) {
	node := newEVMNode(t, "0x1", map[string]string{
		strings.ToLower(evmAddress): "0x22b1c8c1227a0000", // 2.5 ether
	})

	oracle, cleanup, err := chain.NewOracle(t.Context(), config.Network{
		Kind:           config.NetworkKindEVM,
		ID:             1,
		RPCURLs:        []string{node.URL},
		RequestTimeout: time.Second,
	})
	require.NoError(t, err)
	defer cleanup()

	balance, err := oracle.GetBalance(t.Context(), evmAddress)
	require.NoError(t, err)

	expected, _ := new(big.Int).SetString("2500000000000000000", 10)
	assert.Equal(t, 0, expected.Cmp(balance))
}

func TestEVMOracleRejectsWrongChain(t *testing.T) {
	node := newEVMNode(t, "0x38", nil)

	_, _, err := chain.NewOracle(t.Context(), config.Network{
		Kind:    config.NetworkKindEVM,
		ID:      1,
		RPCURLs: []string{node.URL},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1")
}

func TestEVMOracleFailsOver(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	node := newEVMNode(t, "0x1", map[string]string{strings.ToLower(evmAddress): "0xde0b6b3a7640000"})

	client, err := chain.NewRPCClient(t.Context(), []string{broken.URL, node.URL})
	require.NoError(t, err)
	defer client.Close()

	oracle, err := chain.NewEVMOracle(t.Context(), client, 0)
	require.NoError(t, err)

	balance, err := oracle.GetBalance(t.Context(), evmAddress)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.String())
}

func TestEVMOracleClassifiesFailuresAsNetworkErrors(t *testing.T) {
	node := newEVMNode(t, "0x1", nil)

	client, err := chain.NewRPCClient(t.Context(), []string{node.URL})
	require.NoError(t, err)
	defer client.Close()

	oracle, err := chain.NewEVMOracle(t.Context(), client, 0)
	require.NoError(t, err)

	_, err = oracle.GetBalance(t.Context(), evmAddress)
	require.ErrorIs(t, err, ledger.ErrNetwork)

	_, err = oracle.GetBalance(t.Context(), "not-an-address")
	require.ErrorIs(t, err, ledger.ErrNetwork)
}

func newICONNode(t *testing.T, calls *atomic.Int32, handler func(params map[string]string) map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params map[string]string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "icx_getBalance", req.Method)

		res := handler(req.Params)
		res["jsonrpc"] = "2.0"
		res["id"] = req.ID

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(res))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestICONOracleGetBalance(t *testing.T) {
	var calls atomic.Int32
	node := newICONNode(t, &calls, func(params map[string]string) map[string]any {
		assert.Equal(t, iconAddress, params["address"])
		return map[string]any{"result": "0x29a2241af62c0000"} // 3 ICX
	})

	oracle, err := chain.NewICONOracle([]string{node.URL}, time.Second)
	require.NoError(t, err)

	balance, err := oracle.GetBalance(t.Context(), iconAddress)
	require.NoError(t, err)
	assert.Equal(t, "3000000000000000000", balance.String())
	assert.Equal(t, int32(1), calls.Load())
}

func TestICONOracleRPCErrorFailsOver(t *testing.T) {
	var failing, healthy atomic.Int32
	bad := newICONNode(t, &failing, func(map[string]string) map[string]any {
		return map[string]any{"error": map[string]any{"code": -32000, "message": "server busy"}}
	})
	good := newICONNode(t, &healthy, func(map[string]string) map[string]any {
		return map[string]any{"result": "0x0"}
	})

	oracle, err := chain.NewICONOracle([]string{bad.URL, good.URL}, time.Second)
	require.NoError(t, err)

	balance, err := oracle.GetBalance(t.Context(), iconAddress)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())
	assert.Equal(t, int32(1), failing.Load())
	assert.Equal(t, int32(1), healthy.Load())
}

func TestICONOracleAllNodesFail(t *testing.T) {
	var calls atomic.Int32
	bad := newICONNode(t, &calls, func(map[string]string) map[string]any {
		return map[string]any{"error": map[string]any{"code": -32602, "message": "invalid params"}}
	})

	oracle, err := chain.NewICONOracle([]string{bad.URL}, time.Second)
	require.NoError(t, err)

	_, err = oracle.GetBalance(t.Context(), iconAddress)
	require.ErrorIs(t, err, ledger.ErrNetwork)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestIsICONAddress(t *testing.T) {
	assert.True(t, chain.IsICONAddress(iconAddress))
	assert.False(t, chain.IsICONAddress("cx6e1dd0d4432620778b54b2bbc21ac3df961adf89"))
	assert.False(t, chain.IsICONAddress("hx1234"))
	assert.False(t, chain.IsICONAddress("hxzz1dd0d4432620778b54b2bbc21ac3df961adf89"))
}
