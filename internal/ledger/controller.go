package ledger

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/ledger-login/internal/util"
)

// Observer is called with a snapshot after every state change.
type Observer func(state PageState, records []AddressRecord)

// Controller owns the page state and the loaded address records.
//
// Page requests never block the caller. Each request gets a generation; a
// newer request cancels the older one and stale completions are dropped, so
// the state always reflects the latest request.
type Controller struct {
	fetcher  PageFetcher
	notifier NotificationSink
	recorder Recorder

	mu         sync.RWMutex
	state      PageState
	records    []AddressRecord
	generation uint64
	cancel     context.CancelFunc

	observersMu sync.RWMutex
	observers   map[uint64]Observer
	observerSeq uint64
}

// ControllerOption configures a Controller.
type ControllerOption func(c *Controller)

// WithRecorder reports page fetch outcomes to r.
func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewController creates a controller with an empty record set on page 0.
func NewController(fetcher PageFetcher, notifier NotificationSink, opts ...ControllerOption) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		notifier:  notifier,
		recorder:  nopRecorder{},
		observers: make(map[uint64]Observer),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SelectPage starts loading page. IsFetching is set and LastError cleared
// before it returns. The returned channel is closed once the request has
// resolved, whether it was applied, failed or superseded.
//
// The fetch runs detached from ctx cancellation; values (logger) are kept.
func (c *Controller) SelectPage(ctx context.Context, page int) <-chan struct{} {
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	generation := c.generation
	c.cancel = cancel
	c.state.IsFetching = true
	c.state.LastError = ""
	c.mu.Unlock()

	c.notifyObservers()

	done := make(chan struct{})
	go c.run(fetchCtx, generation, page, done)

	return done
}

func (c *Controller) run(ctx context.Context, generation uint64, page int, done chan<- struct{}) {
	log := util.LogFromContext(ctx).With().
		Str("component", "ledger_pages").
		Int("page", page).
		Uint64("generation", generation).
		Logger()

	start := time.Now()

	defer close(done)
	defer c.finish(generation)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic while resolving page request")
			c.reportFailure(ctx, &log, generation, errors.Errorf("page request failed: %v", r), start)
		}
	}()

	records, err := c.fetcher.FetchPage(ctx, page)
	if err != nil {
		c.reportFailure(ctx, &log, generation, err, start)
		return
	}

	if !c.apply(generation, page, records) {
		log.Debug().Msg("Discarding result of superseded page request")
		c.recorder.ObservePageFetch(OutcomeSuperseded, time.Since(start))
		return
	}

	log.Debug().Int("records", len(records)).Msg("Loaded address page")
	c.recorder.ObservePageFetch(OutcomeSuccess, time.Since(start))
}

// reportFailure stores err and notifies once, unless the request was superseded.
func (c *Controller) reportFailure(ctx context.Context, log *zerolog.Logger, generation uint64, err error, start time.Time) {
	if !c.fail(generation, err) {
		log.Debug().Err(err).Msg("Discarding failure of superseded page request")
		c.recorder.ObservePageFetch(OutcomeSuperseded, time.Since(start))
		return
	}

	log.Error().Err(err).Msg("Failed to load address page")
	c.recorder.ObservePageFetch(OutcomeFailure, time.Since(start))
	c.notifier.Error(ctx, Notification{
		Title:   MessageError,
		Message: err.Error(),
		Timeout: NotificationTimeout,
	})
}

func (c *Controller) apply(generation uint64, page int, records []AddressRecord) bool {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return false
	}
	c.records = records
	c.state.CurrentPage = page
	c.mu.Unlock()

	c.notifyObservers()

	return true
}

func (c *Controller) fail(generation uint64, err error) bool {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return false
	}
	c.state.LastError = err.Error()
	c.mu.Unlock()

	c.notifyObservers()

	return true
}

func (c *Controller) finish(generation uint64) {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return
	}
	c.state.IsFetching = false
	c.cancel()
	c.cancel = nil
	c.mu.Unlock()

	c.notifyObservers()
}

// State returns a copy of the current page state.
func (c *Controller) State() PageState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Records returns a copy of the loaded records.
func (c *Controller) Records() []AddressRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return copyRecords(c.records)
}

// Lookup finds a loaded record by address. Hex addresses compare case-insensitively.
func (c *Controller) Lookup(address string) (AddressRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(address)
	if i < 0 {
		return AddressRecord{}, false
	}

	return copyRecords(c.records[i : i+1])[0], true
}

// acquire looks up the record for address and marks it busy under one lock.
// A non-empty path must equal the record's derivation path.
func (c *Controller) acquire(address string, path string) (AddressRecord, error) {
	c.mu.Lock()
	i := c.indexOf(address)
	if i < 0 {
		c.mu.Unlock()
		return AddressRecord{}, ErrNotFound
	}

	if path != "" && path != c.records[i].DerivationPath {
		c.mu.Unlock()
		return AddressRecord{}, &kindError{kind: ErrNotFound, cause: ErrPathMismatch}
	}

	c.records[i].IsBusy = true
	record := copyRecords(c.records[i : i+1])[0]
	c.mu.Unlock()

	c.notifyObservers()

	return record, nil
}

// release clears IsBusy on the record matching address. A record that was
// replaced by a newer page in the meantime is left alone.
func (c *Controller) release(address string) {
	c.mu.Lock()
	i := c.indexOf(address)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.records[i].IsBusy = false
	c.mu.Unlock()

	c.notifyObservers()
}

func (c *Controller) indexOf(address string) int {
	for i := range c.records {
		if strings.EqualFold(c.records[i].Address, address) {
			return i
		}
	}

	return -1
}

// Subscribe registers an observer. The returned function removes it.
// Observers run synchronously on the goroutine that changed the state and
// must not call back into SelectPage.
func (c *Controller) Subscribe(observer Observer) func() {
	c.observersMu.Lock()
	c.observerSeq++
	id := c.observerSeq
	c.observers[id] = observer
	c.observersMu.Unlock()

	return func() {
		c.observersMu.Lock()
		delete(c.observers, id)
		c.observersMu.Unlock()
	}
}

func (c *Controller) notifyObservers() {
	c.observersMu.RLock()
	if len(c.observers) == 0 {
		c.observersMu.RUnlock()
		return
	}
	observers := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.observersMu.RUnlock()

	state, records := c.State(), c.Records()
	for _, o := range observers {
		o(state, copyRecords(records))
	}
}

func copyRecords(records []AddressRecord) []AddressRecord {
	if records == nil {
		return nil
	}

	out := make([]AddressRecord, len(records))
	for i, r := range records {
		out[i] = r
		if r.Balance != nil {
			out[i].Balance = new(big.Rat).Set(r.Balance)
		}
	}

	return out
}
