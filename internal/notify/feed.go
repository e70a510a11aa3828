package notify

import (
	"context"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github/chapool/ledger-login/internal/i18n"
	"github/chapool/ledger-login/internal/ledger"
	"golang.org/x/text/language"
)

// Levels of a feed entry.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// DefaultCapacity is used when NewFeed is given a non-positive capacity.
const DefaultCapacity = 50

// Entry is one stored notification. Title holds the message id until the
// entry is read through Feed.After.
type Entry struct {
	Seq       uint64        `json:"seq"`
	Level     string        `json:"level"`
	Title     string        `json:"title"`
	Message   string        `json:"message,omitempty"`
	Timeout   time.Duration `json:"-"`
	TimeoutMS int64         `json:"timeout_ms"`
	CreatedAt time.Time     `json:"created_at"`
}

// Feed keeps the most recent notifications for polling clients.
type Feed struct {
	translator *i18n.Service
	clock      time2.Clock

	mu      sync.RWMutex
	entries []Entry // ring buffer, next write at head
	head    int
	size    int
	lastSeq uint64
}

func NewFeed(translator *i18n.Service, clock time2.Clock, capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Feed{
		translator: translator,
		clock:      clock,
		entries:    make([]Entry, capacity),
	}
}

// Success implements ledger.NotificationSink.
func (f *Feed) Success(_ context.Context, n ledger.Notification) {
	f.push(LevelSuccess, n)
}

// Error implements ledger.NotificationSink.
func (f *Feed) Error(_ context.Context, n ledger.Notification) {
	f.push(LevelError, n)
}

func (f *Feed) push(level string, n ledger.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastSeq++
	f.entries[f.head] = Entry{
		Seq:       f.lastSeq,
		Level:     level,
		Title:     n.Title,
		Message:   n.Message,
		Timeout:   n.Timeout,
		TimeoutMS: n.Timeout.Milliseconds(),
		CreatedAt: f.clock.Now().UTC(),
	}
	f.head = (f.head + 1) % len(f.entries)
	if f.size < len(f.entries) {
		f.size++
	}
}

// After returns the retained entries with a sequence number greater than
// seq, oldest first, with titles translated to lang.
func (f *Feed) After(seq uint64, lang language.Tag) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Entry, 0, f.size)
	start := (f.head - f.size + len(f.entries)) % len(f.entries)
	for i := range f.size {
		entry := f.entries[(start+i)%len(f.entries)]
		if entry.Seq <= seq {
			continue
		}

		if f.translator != nil {
			entry.Title = f.translator.Translate(entry.Title, lang)
		}
		out = append(out, entry)
	}

	return out
}

// LastSeq is the sequence number of the newest entry, 0 if none was pushed.
func (f *Feed) LastSeq() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.lastSeq
}
