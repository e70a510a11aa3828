package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
)

//nolint:dupword // Test mnemonic with repeated words
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeviceProbe(t *testing.T) {
	cfg := config.Server{
		Network: config.Network{
			Name:           "test",
			Kind:           config.NetworkKindEVM,
			DerivationBase: ledger.EthereumBasePath,
		},
		Device: config.Device{
			Kind:             config.DeviceKindEmulated,
			SessionTimeout:   time.Second,
			EmulatorMnemonic: testMnemonic,
		},
	}

	var out bytes.Buffer
	require.NoError(t, runDeviceProbe(context.Background(), &out, cfg, true))
	assert.Equal(t, "emulated\tm/44'/60'/0'/0/0\t0x9858EfFD232B4033E47d90003D41EC34EcaEda94\n", out.String())
}

func TestDeviceProbeUnknownKind(t *testing.T) {
	cfg := config.Server{Device: config.Device{Kind: "paper"}}

	var out bytes.Buffer
	require.Error(t, runDeviceProbe(context.Background(), &out, cfg, false))
	assert.Empty(t, out.String())
}

func TestRPCProbeICON(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Params map[string]string `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		assert.Equal(t, zeroAddress(config.Network{Kind: config.NetworkKindICON}), req.Params["address"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": "0x14d1120d7b160000"}) // 1.5
	}))
	defer node.Close()

	network := config.Network{
		Name:           "icon-test",
		Kind:           config.NetworkKindICON,
		RPCURLs:        []string{node.URL},
		Decimals:       18,
		RequestTimeout: time.Second,
	}

	var out bytes.Buffer
	require.NoError(t, runRPCProbe(context.Background(), &out, network, "", false))
	assert.Equal(t, "1.5\n", out.String())
}
