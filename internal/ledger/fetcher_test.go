package ledger_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/test"
)

func wei(n int64, exp int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil))
}

func TestFetchPageZero(t *testing.T) {
	signer, oracle := test.NewSigner(), test.NewOracle()
	paths := ledger.EthereumPathScheme()

	balances := []*big.Int{big.NewInt(0), wei(1, 18), wei(2, 18), wei(5, 17), wei(3, 18)}
	for i, b := range balances {
		oracle.SetBalance(test.AddressFor(paths.Path(i)), b)
	}

	records, err := ledger.NewFetcher(signer, oracle, paths).FetchPage(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, records, ledger.ItemsPerPage)

	want := []string{"0", "1", "2", "0.5", "3"}
	for i, r := range records {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, paths.Path(i), r.DerivationPath)
		assert.Equal(t, test.AddressFor(paths.Path(i)), r.Address)
		assert.Equal(t, want[i], ledger.FormatDisplay(r.Balance, 18))
		assert.False(t, r.IsBusy)
	}

	assert.Equal(t, int32(1), signer.Opened.Load())
	assert.Equal(t, int32(1), signer.Closed.Load())
	assert.Equal(t, ledger.ItemsPerPage, oracle.Calls())
}

func TestFetchPageOne(t *testing.T) {
	fetcher := ledger.NewFetcher(test.NewSigner(), test.NewOracle(), ledger.ICONPathScheme())

	first, err := fetcher.FetchPage(t.Context(), 0)
	require.NoError(t, err)

	second, err := fetcher.FetchPage(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, second, ledger.ItemsPerPage)

	pagePaths := make(map[string]bool)
	for _, r := range first {
		pagePaths[r.DerivationPath] = true
	}

	for i, r := range second {
		assert.Equal(t, 5+i, r.Index)
		assert.False(t, pagePaths[r.DerivationPath], r.DerivationPath)
	}
}

func TestFetchPageDecimals(t *testing.T) {
	signer, oracle := test.NewSigner(), test.NewOracle()
	paths := ledger.EthereumPathScheme()
	oracle.SetBalance(test.AddressFor(paths.Path(0)), big.NewInt(1_500_000))

	records, err := ledger.NewFetcher(signer, oracle, paths, ledger.WithDecimals(6)).FetchPage(t.Context(), 0)
	require.NoError(t, err)
	assert.Equal(t, "1.5", ledger.FormatDisplay(records[0].Balance, 6))
}

func TestFetchPageInvalid(t *testing.T) {
	signer := test.NewSigner()
	fetcher := ledger.NewFetcher(signer, test.NewOracle(), ledger.EthereumPathScheme())

	for _, page := range []int{-1, ledger.MaxPage + 1} {
		_, err := fetcher.FetchPage(t.Context(), page)
		require.ErrorIs(t, err, ledger.ErrInvalidPage)
	}

	assert.Equal(t, int32(0), signer.Opened.Load())

	_, err := fetcher.FetchPage(t.Context(), ledger.MaxPage)
	require.NoError(t, err)
}

func TestFetchPageTransportFailure(t *testing.T) {
	signer := test.NewSigner()
	signer.FailOpen(errors.New("no device"))

	_, err := ledger.NewFetcher(signer, test.NewOracle(), ledger.EthereumPathScheme()).FetchPage(t.Context(), 0)
	require.ErrorIs(t, err, ledger.ErrTransport)
	assert.Contains(t, err.Error(), "no device")

	var fetchErr *ledger.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, -1, fetchErr.Index)
}

func TestFetchPageDeviceFailure(t *testing.T) {
	signer := test.NewSigner()
	paths := ledger.EthereumPathScheme()
	rejected := errors.New("user rejected")
	signer.FailPath(paths.Path(8), rejected)

	_, err := ledger.NewFetcher(signer, test.NewOracle(), paths).FetchPage(t.Context(), 1)
	require.ErrorIs(t, err, ledger.ErrDevice)
	require.ErrorIs(t, err, rejected)
	assert.Equal(t, ledger.ErrDevice, ledger.KindOf(err))

	var fetchErr *ledger.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, fetchErr.Page)
	assert.Equal(t, 8, fetchErr.Index)
	assert.Equal(t, paths.Path(8), fetchErr.Path)

	// the session is released on failure too
	assert.Equal(t, signer.Opened.Load(), signer.Closed.Load())
}

func TestFetchPageNetworkFailure(t *testing.T) {
	signer, oracle := test.NewSigner(), test.NewOracle()
	paths := ledger.EthereumPathScheme()
	oracle.Fail(test.AddressFor(paths.Path(2)), errors.New("node down"))

	records, err := ledger.NewFetcher(signer, oracle, paths).FetchPage(t.Context(), 0)
	require.ErrorIs(t, err, ledger.ErrNetwork)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "node down")
}

func TestFetchPageKeepsClassifiedKind(t *testing.T) {
	signer := test.NewSigner()
	paths := ledger.EthereumPathScheme()
	signer.FailPath(paths.Path(0), ledger.TransportError(errors.New("unplugged mid-session")))

	_, err := ledger.NewFetcher(signer, test.NewOracle(), paths).FetchPage(t.Context(), 0)
	require.ErrorIs(t, err, ledger.ErrTransport)
	assert.NotErrorIs(t, err, ledger.ErrDevice)
}

func TestFetchPageSessionTimeout(t *testing.T) {
	signer := test.NewSigner()
	release := signer.Hold()
	defer release()

	fetcher := ledger.NewFetcher(signer, test.NewOracle(), ledger.EthereumPathScheme(),
		ledger.WithSessionTimeout(20*time.Millisecond))

	_, err := fetcher.FetchPage(t.Context(), 0)
	require.ErrorIs(t, err, ledger.ErrDevice)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchPageDerivesConcurrently(t *testing.T) {
	signer := test.NewSigner()
	release := signer.Hold()
	defer release()

	fetcher := ledger.NewFetcher(signer, test.NewOracle(), ledger.EthereumPathScheme())

	type result struct {
		records []ledger.AddressRecord
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, err := fetcher.FetchPage(t.Context(), 0)
		done <- result{records, err}
	}()

	require.Eventually(t, func() bool {
		return signer.InFlight.Load() == ledger.ItemsPerPage
	}, time.Second, time.Millisecond)
	assert.Empty(t, signer.Completed())

	release()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.Len(t, res.records, ledger.ItemsPerPage)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not finish")
	}

	assert.Equal(t, int32(ledger.ItemsPerPage), signer.MaxInFlight.Load())
}

func TestFetchPageOrdersOutOfOrderCompletions(t *testing.T) {
	signer, oracle := test.NewSigner(), test.NewOracle()
	paths := ledger.EthereumPathScheme()

	// lower indices finish last, both on the device and on the node
	for i := range ledger.ItemsPerPage {
		delay := time.Duration(ledger.ItemsPerPage-i) * 15 * time.Millisecond
		signer.Delay(paths.Path(i), delay)
		oracle.Delay(test.AddressFor(paths.Path(i)), delay)
		oracle.SetBalance(test.AddressFor(paths.Path(i)), wei(int64(i), 18))
	}

	records, err := ledger.NewFetcher(signer, oracle, paths).FetchPage(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, records, ledger.ItemsPerPage)

	completed := signer.Completed()
	require.Len(t, completed, ledger.ItemsPerPage)
	assert.Equal(t, paths.Path(ledger.ItemsPerPage-1), completed[0])
	assert.Equal(t, paths.Path(0), completed[ledger.ItemsPerPage-1])

	for i, r := range records {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, paths.Path(i), r.DerivationPath)
		assert.Equal(t, test.AddressFor(paths.Path(i)), r.Address)
		assert.Equal(t, 0, r.Balance.Cmp(new(big.Rat).SetInt64(int64(i))))
	}

	assert.Equal(t, int32(ledger.ItemsPerPage), signer.MaxInFlight.Load())
}
