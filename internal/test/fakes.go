package test

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/ledger-login/internal/ledger"
)

// AddressFor is the address a Signer derives for path.
func AddressFor(path string) string {
	return common.BytesToAddress(crypto.Keccak256([]byte(path))[12:]).Hex()
}

// Signer is a scripted ledger.HardwareSigner.
type Signer struct {
	mu         sync.Mutex
	openErr    error
	deriveErrs map[string]error
	delays     map[string]time.Duration
	hold       chan struct{}
	derived    []string
	completed  []string

	Opened      atomic.Int32
	Closed      atomic.Int32
	InFlight    atomic.Int32
	MaxInFlight atomic.Int32
}

func NewSigner() *Signer {
	return &Signer{
		deriveErrs: make(map[string]error),
		delays:     make(map[string]time.Duration),
	}
}

// Delay makes DeriveAddress for path take at least d.
func (s *Signer) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Completed lists the paths whose derivation returned, in completion order.
func (s *Signer) Completed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.completed...)
}

// FailOpen makes every OpenSession fail with err until reset with nil.
func (s *Signer) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

// FailPath makes DeriveAddress fail for path.
func (s *Signer) FailPath(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deriveErrs[path] = err
}

// Hold blocks every following DeriveAddress until the returned function is called.
func (s *Signer) Hold() (release func()) {
	gate := make(chan struct{})

	s.mu.Lock()
	s.hold = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(gate)
		})
	}
}

// Derived lists the paths derived so far, in call order.
func (s *Signer) Derived() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.derived...)
}

//nolint:ireturn
func (s *Signer) OpenSession(_ context.Context) (ledger.Session, error) {
	s.mu.Lock()
	err := s.openErr
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	s.Opened.Add(1)
	return &signerSession{signer: s}, nil
}

type signerSession struct {
	signer *Signer
}

func (s *signerSession) DeriveAddress(ctx context.Context, path string) (string, error) {
	s.signer.mu.Lock()
	gate := s.signer.hold
	err := s.signer.deriveErrs[path]
	delay := s.signer.delays[path]
	s.signer.derived = append(s.signer.derived, path)
	s.signer.mu.Unlock()

	s.signer.enter()
	defer s.signer.leave(path)

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err != nil {
		return "", err
	}

	return AddressFor(path), nil
}

func (s *Signer) enter() {
	n := s.InFlight.Add(1)
	for {
		highest := s.MaxInFlight.Load()
		if n <= highest || s.MaxInFlight.CompareAndSwap(highest, n) {
			return
		}
	}
}

func (s *Signer) leave(path string) {
	s.InFlight.Add(-1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, path)
}

func (s *signerSession) Close() error {
	s.signer.Closed.Add(1)
	return nil
}

// Oracle is a scripted ledger.BalanceOracle. Unknown addresses hold zero.
type Oracle struct {
	mu       sync.Mutex
	balances map[string]*big.Int
	errs     map[string]error
	delays   map[string]time.Duration
	calls    int
}

func NewOracle() *Oracle {
	return &Oracle{
		balances: make(map[string]*big.Int),
		errs:     make(map[string]error),
		delays:   make(map[string]time.Duration),
	}
}

// Delay makes GetBalance for address take at least d.
func (o *Oracle) Delay(address string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delays[strings.ToLower(address)] = d
}

func (o *Oracle) SetBalance(address string, atomic *big.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.balances[strings.ToLower(address)] = atomic
}

func (o *Oracle) Fail(address string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs[strings.ToLower(address)] = err
}

func (o *Oracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func (o *Oracle) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	key := strings.ToLower(address)

	o.mu.Lock()
	delay := o.delays[key]
	o.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	if err := o.errs[key]; err != nil {
		return nil, err
	}

	if balance, ok := o.balances[key]; ok {
		return new(big.Int).Set(balance), nil
	}

	return new(big.Int), nil
}

// Sink records notifications.
type Sink struct {
	mu        sync.Mutex
	successes []ledger.Notification
	errors    []ledger.Notification
}

func (s *Sink) Success(_ context.Context, n ledger.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, n)
}

func (s *Sink) Error(_ context.Context, n ledger.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, n)
}

func (s *Sink) Successes() []ledger.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Notification(nil), s.successes...)
}

func (s *Sink) Errors() []ledger.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Notification(nil), s.errors...)
}

// Identity records logins. OnLogin, if set, runs before Err is returned.
type Identity struct {
	Err     error
	OnLogin func(identity ledger.Identity)

	mu     sync.Mutex
	logins []ledger.Identity
}

func (i *Identity) Login(_ context.Context, identity ledger.Identity) error {
	if i.OnLogin != nil {
		i.OnLogin(identity)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.Err != nil {
		return i.Err
	}

	i.logins = append(i.logins, identity)
	return nil
}

func (i *Identity) Logins() []ledger.Identity {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]ledger.Identity(nil), i.logins...)
}

// Recorder counts ledger.Recorder observations by outcome.
type Recorder struct {
	mu         sync.Mutex
	fetches    map[string]int
	selections map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{fetches: make(map[string]int), selections: make(map[string]int)}
}

func (r *Recorder) ObservePageFetch(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[outcome]++
}

func (r *Recorder) ObserveSelection(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections[outcome]++
}

func (r *Recorder) Fetches(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches[outcome]
}

func (r *Recorder) Selections(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selections[outcome]
}
