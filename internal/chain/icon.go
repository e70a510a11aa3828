package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/ledger-login/internal/ledger"
)

const (
	iconMethodGetBalance = "icx_getBalance"
	iconAddressPrefixEOA = "hx"
	iconAddressHexLength = 40
	maxResponseBytes     = 1 << 20
)

// ICONOracle reads ICX balances (loop) from ICON JSON-RPC v3 endpoints.
type ICONOracle struct {
	urls   []string
	http   *http.Client
	nextID atomic.Uint64
}

// NewICONOracle creates an oracle over the given /api/v3 endpoints, tried in order.
func NewICONOracle(urls []string, timeout time.Duration) (*ICONOracle, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	return &ICONOracle{
		urls: urls,
		http: &http.Client{Timeout: timeout},
	}, nil
}

type iconRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	ID      uint64         `json:"id"`
	Params  map[string]any `json:"params,omitempty"`
}

type iconError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *iconError) Error() string {
	return fmt.Sprintf("icon rpc error %d: %s", e.Code, e.Message)
}

type iconResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *iconError      `json:"error"`
}

// IsICONAddress reports whether address is an ICON EOA address (hx + 40 hex chars).
func IsICONAddress(address string) bool {
	if !strings.HasPrefix(address, iconAddressPrefixEOA) || len(address) != len(iconAddressPrefixEOA)+iconAddressHexLength {
		return false
	}

	_, err := hexutil.Decode("0x" + address[len(iconAddressPrefixEOA):])
	return err == nil
}

// GetBalance implements ledger.BalanceOracle.
func (o *ICONOracle) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if !IsICONAddress(address) {
		return nil, ledger.NetworkError(errors.Errorf("invalid ICON address %q", address))
	}

	var lastErr error
	for _, url := range o.urls {
		var result string
		err := o.call(ctx, url, iconMethodGetBalance, map[string]any{"address": address}, &result)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ledger.NetworkError(err)
			}

			log.Warn().Str("url", url).Err(err).Msg("ICON RPC call failed, trying next node")
			lastErr = err
			continue
		}

		balance, err := hexutil.DecodeBig(result)
		if err != nil {
			return nil, ledger.NetworkError(errors.Wrapf(err, "invalid balance %q", result))
		}

		return balance, nil
	}

	return nil, ledger.NetworkError(errors.Wrap(lastErr, "failed to get balance"))
}

func (o *ICONOracle) call(ctx context.Context, url string, method string, params map[string]any, result any) error {
	body, err := json.Marshal(iconRequest{
		JSONRPC: "2.0",
		Method:  method,
		ID:      o.nextID.Add(1),
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := o.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	var rpcRes iconResponse
	if err := json.Unmarshal(payload, &rpcRes); err != nil {
		return errors.Wrapf(err, "unexpected response (HTTP %d)", res.StatusCode)
	}

	if rpcRes.Error != nil {
		return rpcRes.Error
	}

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected HTTP status %d", res.StatusCode)
	}

	if err := json.Unmarshal(rpcRes.Result, result); err != nil {
		return errors.Wrap(err, "failed to decode result")
	}

	return nil
}
