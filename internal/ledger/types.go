package ledger

import (
	"context"
	"math/big"
	"time"
)

const (
	// ItemsPerPage is the fixed number of derivation slots shown per page
	ItemsPerPage = 5

	// DefaultDecimals is the power-of-ten divisor between atomic and display units
	DefaultDecimals = 18

	// WalletKindLedger identifies hardware-wallet logins towards the identity session
	WalletKindLedger = "ledger"

	// NotificationTimeout is how long the UI should keep a notification visible
	NotificationTimeout = 5 * time.Second
)

// Message ids used as notification titles, localized by the notification sink.
const (
	MessageLoginSuccess = "ledger.login.success"
	MessageError        = "ledger.error"
)

// AddressRecord is one derived hardware-wallet address with its balance.
type AddressRecord struct {
	Index          int      // Absolute derivation slot (page * ItemsPerPage + offset)
	DerivationPath string   // HD path the device derived Address from
	Address        string   // Device-derived public address
	Balance        *big.Rat // Balance in display units
	IsBusy         bool     // Set while a selection is in progress for this record
}

// PageState is the observable paging status.
type PageState struct {
	IsFetching  bool
	CurrentPage int
	LastError   string // Empty when the last attempt did not fail
}

// Identity is handed to the identity session when an address is selected.
type Identity struct {
	Address        string
	DerivationPath string
	WalletKind     string
}

// Notification is a fire-and-forget user message.
type Notification struct {
	Title   string // Message id or literal title
	Message string
	Timeout time.Duration
}

// HardwareSigner opens sessions against a hardware signing device.
type HardwareSigner interface {
	// OpenSession opens a fresh device session. The caller must Close it.
	OpenSession(ctx context.Context) (Session, error)
}

// Session is a scoped connection to a hardware device.
type Session interface {
	// DeriveAddress asks the device for the address at the given derivation path
	DeriveAddress(ctx context.Context, path string) (string, error)

	// Close releases the device
	Close() error
}

// BalanceOracle queries balances from a blockchain node.
type BalanceOracle interface {
	// GetBalance returns the balance of address in atomic units
	GetBalance(ctx context.Context, address string) (*big.Int, error)
}

// IdentitySession receives the selected login identity.
type IdentitySession interface {
	Login(ctx context.Context, identity Identity) error
}

// NotificationSink delivers user-visible notifications.
type NotificationSink interface {
	Success(ctx context.Context, n Notification)
	Error(ctx context.Context, n Notification)
}

// PageFetcher produces one page of address records.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) ([]AddressRecord, error)
}

// Recorder receives operational measurements. metrics.Service implements it.
type Recorder interface {
	ObservePageFetch(outcome string, duration time.Duration)
	ObserveSelection(outcome string)
}

// Outcomes reported to a Recorder.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuperseded = "superseded"
	OutcomeNotFound   = "not_found"
)

type nopRecorder struct{}

func (nopRecorder) ObservePageFetch(string, time.Duration) {}
func (nopRecorder) ObserveSelection(string)                {}
