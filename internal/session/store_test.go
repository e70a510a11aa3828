package session_test

import (
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/session"
)

func TestLoginLogout(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := time2.NewMockClock(now)
	store := session.NewStore(clock)

	_, ok := store.Current()
	assert.False(t, ok)

	err := store.Login(t.Context(), ledger.Identity{
		Address:        "hx6e1dd0d4432620778b54b2bbc21ac3df961adf89",
		DerivationPath: "m/44'/4801368'/0'/0'/3'",
		WalletKind:     ledger.WalletKindLedger,
	})
	require.NoError(t, err)

	current, ok := store.Current()
	require.True(t, ok)
	assert.NotEmpty(t, current.ID)
	assert.Equal(t, "hx6e1dd0d4432620778b54b2bbc21ac3df961adf89", current.Address)
	assert.Equal(t, "m/44'/4801368'/0'/0'/3'", current.DerivationPath)
	assert.Equal(t, "ledger", current.WalletKind)
	assert.Equal(t, now, current.LoggedInAt)

	require.NoError(t, store.Logout(t.Context()))

	_, ok = store.Current()
	assert.False(t, ok)

	require.ErrorIs(t, store.Logout(t.Context()), session.ErrNoSession)
}

func TestLoginReplacesSession(t *testing.T) {
	clock := time2.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := session.NewStore(clock)

	require.NoError(t, store.Login(t.Context(), ledger.Identity{Address: "0x01", WalletKind: ledger.WalletKindLedger}))
	first, _ := store.Current()

	clock.Advance(time.Minute)

	require.NoError(t, store.Login(t.Context(), ledger.Identity{Address: "0x02", WalletKind: ledger.WalletKindLedger}))
	second, ok := store.Current()
	require.True(t, ok)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "0x02", second.Address)
	assert.Equal(t, first.LoggedInAt.Add(time.Minute), second.LoggedInAt)
}

func TestLoginRequiresAddress(t *testing.T) {
	store := session.NewStore(time2.DefaultClock)

	require.Error(t, store.Login(t.Context(), ledger.Identity{}))

	_, ok := store.Current()
	assert.False(t, ok)
}
