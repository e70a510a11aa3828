package ledger_test

import (
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/api"
	handlers "github/chapool/ledger-login/internal/api/handlers/ledger"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/test"
)

func loadPage(t *testing.T, s *api.Server, page int) {
	t.Helper()

	select {
	case <-s.Pages.SelectPage(t.Context(), page):
	case <-time.After(5 * time.Second):
		t.Fatal("page request did not resolve")
	}
}

func TestGetStateInitial(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/ledger/state", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body handlers.StateResponse
		test.ParseResponseBody(t, res, &body)

		assert.Equal(t, handlers.PageState{}, body.PageState)
		assert.Empty(t, body.Records)
	})
}

func TestPostPage(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		signer := s.Signer.(*test.Signer)
		oracle := s.Oracle.(*test.Oracle)
		paths := ledger.EthereumPathScheme()
		oracle.SetBalance(test.AddressFor(paths.Path(6)), big.NewInt(2_500_000_000_000_000_000))

		release := signer.Hold()

		res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/page", map[string]any{"page": 1}, nil)
		require.Equal(t, http.StatusAccepted, res.Result().StatusCode)

		var accepted handlers.StateResponse
		test.ParseResponseBody(t, res, &accepted)
		assert.True(t, accepted.PageState.IsFetching)
		assert.Equal(t, 0, accepted.PageState.CurrentPage)

		release()
		require.Eventually(t, func() bool {
			return !s.Pages.State().IsFetching
		}, 5*time.Second, 10*time.Millisecond)

		res = test.PerformRequest(t, s, "GET", "/api/v1/ledger/state", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body handlers.StateResponse
		test.ParseResponseBody(t, res, &body)

		assert.Equal(t, handlers.PageState{CurrentPage: 1}, body.PageState)
		require.Len(t, body.Records, ledger.ItemsPerPage)
		for i, r := range body.Records {
			assert.Equal(t, 5+i, r.Index)
			assert.Equal(t, paths.Path(5+i), r.DerivationPath)
			assert.Equal(t, test.AddressFor(paths.Path(5+i)), r.Address)
		}
		assert.Equal(t, "2.5", body.Records[1].Balance)
		assert.Equal(t, "0", body.Records[0].Balance)
	})
}

func TestPostPageInvalid(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		for _, payload := range []any{
			map[string]any{},
			map[string]any{"page": -1},
			map[string]any{"page": "one"},
			map[string]any{"page": 1, "size": 10},
		} {
			res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/page", payload, nil)
			test.RequireHTTPError(t, res, httperrors.ErrBadRequestInvalidBody)
		}

		res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/page", map[string]any{"page": ledger.MaxPage + 1}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadRequestInvalidPage)

		assert.False(t, s.Pages.State().IsFetching)
	})
}

func TestPostPageFailureIsReported(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		s.Signer.(*test.Signer).FailOpen(errors.New("ledger locked"))

		loadPage(t, s, 0)

		res := test.PerformRequest(t, s, "GET", "/api/v1/ledger/state", nil, nil)

		var body handlers.StateResponse
		test.ParseResponseBody(t, res, &body)
		assert.False(t, body.PageState.IsFetching)
		assert.Contains(t, body.PageState.LastError, "ledger locked")
		assert.Empty(t, body.Records)
	})
}

func TestPostSelect(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		loadPage(t, s, 0)
		record := s.Pages.Records()[2]

		res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/select", map[string]any{
			"address": record.Address,
			"path":    record.DerivationPath,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body handlers.IdentityResponse
		test.ParseResponseBody(t, res, &body)
		assert.Equal(t, handlers.IdentityResponse{
			Address:        record.Address,
			DerivationPath: record.DerivationPath,
			WalletKind:     ledger.WalletKindLedger,
		}, body)

		current, ok := s.Sessions.Current()
		require.True(t, ok)
		assert.Equal(t, record.Address, current.Address)
	})
}

func TestPostSelectNotFound(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		loadPage(t, s, 0)

		res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/select", map[string]any{
			"address": "0x000000000000000000000000000000000000dEaD",
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundAddress)

		_, ok := s.Sessions.Current()
		assert.False(t, ok)
	})
}

func TestPostSelectMissingAddress(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		for _, payload := range []any{
			map[string]any{"path": "m/44'/60'/0'/0/0"},
			map[string]any{"address": ""},
		} {
			res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/select", payload, nil)
			test.RequireHTTPError(t, res, httperrors.ErrBadRequestInvalidBody)
		}
	})
}

func TestPostSelectLoginFailure(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		loadPage(t, s, 0)
		s.Selector = ledger.NewSelector(s.Pages, &test.Identity{Err: errors.New("identity provider down")}, &test.Sink{}, nil)

		res := test.PerformRequest(t, s, "POST", "/api/v1/ledger/select", map[string]any{
			"address": s.Pages.Records()[0].Address,
		}, nil)
		test.RequireHTTPError(t, res, httperrors.ErrBadGatewayLogin)
	})
}

func TestPostPagePayloadValidate(t *testing.T) {
	err := (&handlers.PostPagePayload{}).Validate(strfmt.Default)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page in body is required")

	err = (&handlers.PostPagePayload{Page: swag.Int64(-1)}).Validate(strfmt.Default)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page in body should be greater than or equal to 0")

	require.NoError(t, (&handlers.PostPagePayload{Page: swag.Int64(0)}).Validate(strfmt.Default))
}
