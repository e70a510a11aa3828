package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Match with errors.Is.
var (
	ErrTransport   = errors.New("device transport unavailable")
	ErrDevice      = errors.New("device request failed")
	ErrNetwork     = errors.New("balance query failed")
	ErrNotFound    = errors.New("address not found")
	ErrInvalidPage = errors.New("invalid page")
)

var kinds = []error{ErrTransport, ErrDevice, ErrNetwork, ErrNotFound, ErrInvalidPage}

// kindError attaches an error kind to a cause without hiding either.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.cause)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// Cause keeps github.com/pkg/errors.Cause working on classified errors.
func (e *kindError) Cause() error {
	return e.cause
}

func withKind(kind error, cause error) error {
	if cause == nil {
		return nil
	}

	if KindOf(cause) != nil {
		return cause
	}

	return &kindError{kind: kind, cause: cause}
}

// TransportError marks err as a failure to open a device session.
func TransportError(err error) error { return withKind(ErrTransport, err) }

// DeviceError marks err as a failed device request (rejection, disconnect, firmware fault).
func DeviceError(err error) error { return withKind(ErrDevice, err) }

// NetworkError marks err as a failed balance query.
func NetworkError(err error) error { return withKind(ErrNetwork, err) }

// KindOf returns the error kind err carries, or nil if it is unclassified.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// FetchError is returned by Fetcher.FetchPage. It carries the first failure
// of the batch; Index and Path are set when the failure belongs to one slot.
type FetchError struct {
	Page  int
	Index int
	Path  string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to fetch page %d (index %d, path %s): %s", e.Page, e.Index, e.Path, e.Err)
	}

	return fmt.Sprintf("failed to fetch page %d: %s", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SelectError is returned by Selector.SelectAddress.
type SelectError struct {
	Address string
	Err     error
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("failed to select address %s: %s", e.Address, e.Err)
}

func (e *SelectError) Unwrap() error {
	return e.Err
}
