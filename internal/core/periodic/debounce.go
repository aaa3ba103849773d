package periodic

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key into one call after a quiet window.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*debounced
}

type debounced struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*debounced),
	}
}

// Trigger schedules fn for key, replacing and re-timing any pending call.
// fn runs on its own goroutine once the key has been quiet for the window.
func (debouncer *Debouncer) Trigger(key string, fn func()) {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	if existing, ok := debouncer.pending[key]; ok {
		existing.timer.Stop()
	}
	entry := &debounced{fn: fn}
	entry.timer = time.AfterFunc(debouncer.delay, func() {
		debouncer.fire(key, entry)
	})
	debouncer.pending[key] = entry
}

// Cancel drops the pending call for key. It reports whether one was pending.
func (debouncer *Debouncer) Cancel(key string) bool {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	entry, ok := debouncer.pending[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(debouncer.pending, key)
	return true
}

// CancelAll drops every pending call.
func (debouncer *Debouncer) CancelAll() {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()

	for key, entry := range debouncer.pending {
		entry.timer.Stop()
		delete(debouncer.pending, key)
	}
}

// Flush runs every pending call now, on the caller's goroutine.
func (debouncer *Debouncer) Flush() {
	debouncer.mu.Lock()
	due := make([]func(), 0, len(debouncer.pending))
	for key, entry := range debouncer.pending {
		entry.timer.Stop()
		delete(debouncer.pending, key)
		due = append(due, entry.fn)
	}
	debouncer.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Pending returns the number of keys waiting to fire.
func (debouncer *Debouncer) Pending() int {
	debouncer.mu.Lock()
	defer debouncer.mu.Unlock()
	return len(debouncer.pending)
}

func (debouncer *Debouncer) fire(key string, entry *debounced) {
	debouncer.mu.Lock()
	if debouncer.pending[key] != entry {
		debouncer.mu.Unlock()
		return
	}
	delete(debouncer.pending, key)
	debouncer.mu.Unlock()

	entry.fn()
}
