package addresses

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/test"
)

func TestLoadPage(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		records, err := loadPage(t.Context(), s, 1)
		require.NoError(t, err)
		require.Len(t, records, ledger.ItemsPerPage)

		for i, r := range records {
			assert.Equal(t, ledger.ItemsPerPage+i, r.Index)
		}
		assert.Equal(t, 1, s.Pages.State().CurrentPage)
	})
}

func TestLoadPageOutOfRange(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		for _, page := range []int{-1, ledger.MaxPage + 1} {
			_, err := loadPage(t.Context(), s, page)
			require.ErrorIs(t, err, ledger.ErrInvalidPage, "page %d", page)
		}

		assert.Empty(t, s.Signer.(*test.Signer).Derived())
	})
}

func TestLoadPageDeviceFailure(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		s.Signer.(*test.Signer).FailOpen(errors.New("ledger locked"))

		_, err := loadPage(t.Context(), s, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load page 0")
		assert.Contains(t, err.Error(), "ledger locked")
	})
}

func TestPrintRecords(t *testing.T) {
	records := []ledger.AddressRecord{
		{
			Index:          0,
			DerivationPath: "m/44'/60'/0'/0/0",
			Address:        "0x9858EfFD232B4033E47d90003D41EC34EcaEda94",
			Balance:        big.NewRat(3, 2),
		},
		{
			Index:          1,
			DerivationPath: "m/44'/60'/0'/0/1",
			Address:        "0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0",
		},
	}

	var out bytes.Buffer
	require.NoError(t, printRecords(&out, records))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"INDEX", "PATH", "ADDRESS", "BALANCE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "m/44'/60'/0'/0/0", "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "1.5"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "m/44'/60'/0'/0/1", "0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0", "0"}, strings.Fields(lines[2]))
}

func TestPrintRecordsEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRecords(&out, nil))

	assert.Equal(t, []string{"INDEX", "PATH", "ADDRESS", "BALANCE"}, strings.Fields(out.String()))
}
