package ledger

import (
	"context"
	"time"

	"github/chapool/ledger-login/internal/util"

	"golang.org/x/sync/errgroup"
)

// Fetcher derives one page of addresses from a single device session and
// queries their balances.
type Fetcher struct {
	signer   HardwareSigner
	oracle   BalanceOracle
	paths    PathScheme
	decimals uint8
	timeout  time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(f *Fetcher)

// WithDecimals overrides the atomic to display unit exponent (DefaultDecimals).
func WithDecimals(decimals uint8) FetcherOption {
	return func(f *Fetcher) {
		f.decimals = decimals
	}
}

// WithSessionTimeout bounds one page fetch, device session included.
func WithSessionTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// NewFetcher creates a page fetcher.
func NewFetcher(signer HardwareSigner, oracle BalanceOracle, paths PathScheme, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		signer:   signer,
		oracle:   oracle,
		paths:    paths,
		decimals: DefaultDecimals,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// MaxPage is the highest page whose indices all fit below MaxIndex.
const MaxPage = (MaxIndex - (ItemsPerPage - 1)) / ItemsPerPage

// FetchPage returns exactly ItemsPerPage records for page, ordered by index.
// Any failure fails the whole page with a *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, page int) ([]AddressRecord, error) {
	log := util.LogFromContext(ctx).With().Int("page", page).Logger()

	if page < 0 || page > MaxPage {
		return nil, &FetchError{Page: page, Index: -1, Err: ErrInvalidPage}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	session, err := f.signer.OpenSession(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to open device session")
		return nil, &FetchError{Page: page, Index: -1, Err: TransportError(err)}
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close device session")
		}
	}()

	records := make([]AddressRecord, ItemsPerPage)
	group, groupCtx := errgroup.WithContext(ctx)

	for offset := range ItemsPerPage {
		index := page*ItemsPerPage + offset
		path := f.paths.Path(index)

		group.Go(func() error {
			address, err := session.DeriveAddress(groupCtx, path)
			if err != nil {
				return &FetchError{Page: page, Index: index, Path: path, Err: DeviceError(err)}
			}

			atomic, err := f.oracle.GetBalance(groupCtx, address)
			if err != nil {
				return &FetchError{Page: page, Index: index, Path: path, Err: NetworkError(err)}
			}

			records[offset] = AddressRecord{
				Index:          index,
				DerivationPath: path,
				Address:        address,
				Balance:        ToDisplay(atomic, f.decimals),
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Debug().Err(err).Msg("Failed to fetch address page")
		return nil, err
	}

	log.Debug().Msg("Fetched address page")

	return records, nil
}
