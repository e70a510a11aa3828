package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/api/router"
	"github/chapool/ledger-login/internal/config"
	"github/chapool/ledger-login/internal/ledger"
)

// DefaultTestConfig is an EVM network with the Ethereum path scheme. Device and
// node are replaced by fakes, no endpoint is contacted.
func DefaultTestConfig(t *testing.T) config.Server {
	t.Helper()

	cfg, err := config.Load(config.NewViper())
	require.NoError(t, err)

	cfg.Logger.Level = "debug"
	cfg.Echo.HideInternalServerErrorDetails = false
	cfg.Network = config.Network{
		Name:           config.NetworkCustom,
		Kind:           config.NetworkKindEVM,
		ID:             1,
		RPCURLs:        []string{"http://127.0.0.1:0"},
		Decimals:       ledger.DefaultDecimals,
		DerivationBase: ledger.EthereumBasePath,
		RequestTimeout: time.Second,
	}
	cfg.Device = config.Device{
		Kind:           config.DeviceKindEmulated,
		SessionTimeout: 5 * time.Second,
	}

	return cfg
}

// WithTestServer runs closure against a fully routed server backed by a
// *Signer and an *Oracle (reachable via s.Signer and s.Oracle).
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, DefaultTestConfig(t), closure)
}

func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServerWithComponents(cfg, NewSigner(), NewOracle(), t)
	require.NoError(t, err, "Failed to initialize test server")

	require.NoError(t, router.Init(s), "Failed to initialize router")

	closure(s)
}

// PerformRequest runs a request through the echo instance of s. A non-nil
// body is encoded as JSON unless it is an io.Reader.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequestWithContext(t.Context(), method, path, reader)
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseBody decodes the JSON response body into v.
func ParseResponseBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

// RequireHTTPError asserts res carries httpErr's status, type and title.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpErr *httperrors.HTTPError) {
	t.Helper()

	require.Equal(t, httpErr.Code, res.Result().StatusCode)

	var got httperrors.HTTPError
	ParseResponseBody(t, res, &got)

	require.Equal(t, httpErr.Code, got.Code)
	require.Equal(t, httpErr.Type, got.Type)
	require.Equal(t, httpErr.Title, got.Title)
}
