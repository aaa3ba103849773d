// Package clock abstracts wall-clock reads and tickers so periodic work can be
// driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock provides the current time and tickers.
type Clock interface {
	Now() time.Time
	NewTicker(interval time.Duration) Ticker
}

// Real returns the system clock.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) NewTicker(interval time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(interval)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (ticker *realTicker) C() <-chan time.Time {
	return ticker.ticker.C
}

func (ticker *realTicker) Stop() {
	ticker.ticker.Stop()
}

// Manual is a clock that only moves when Advance is called.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual time.
func (manual *Manual) Now() time.Time {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return manual.now
}

// NewTicker registers a ticker that fires on Advance.
func (manual *Manual) NewTicker(interval time.Duration) Ticker {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	ticker := &manualTicker{
		owner:    manual,
		interval: interval,
		next:     manual.now.Add(interval),
		ch:       make(chan time.Time, 1),
	}
	manual.tickers = append(manual.tickers, ticker)
	return ticker
}

// Advance moves the clock forward and fires every ticker whose period elapsed.
// Like time.Ticker, a ticker that is not drained drops ticks.
func (manual *Manual) Advance(delta time.Duration) {
	manual.mu.Lock()
	manual.now = manual.now.Add(delta)
	now := manual.now
	tickers := append([]*manualTicker(nil), manual.tickers...)
	manual.mu.Unlock()

	for _, ticker := range tickers {
		ticker.fire(now)
	}
}

// Set jumps the clock to an absolute time without firing tickers.
func (manual *Manual) Set(now time.Time) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	manual.now = now
}

// ActiveTickers returns the number of tickers that have not been stopped.
func (manual *Manual) ActiveTickers() int {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	return len(manual.tickers)
}

func (manual *Manual) remove(target *manualTicker) {
	manual.mu.Lock()
	defer manual.mu.Unlock()
	for index, ticker := range manual.tickers {
		if ticker == target {
			manual.tickers = append(manual.tickers[:index], manual.tickers[index+1:]...)
			return
		}
	}
}

type manualTicker struct {
	owner    *Manual
	interval time.Duration
	mu       sync.Mutex
	next     time.Time
	ch       chan time.Time
}

func (ticker *manualTicker) C() <-chan time.Time {
	return ticker.ch
}

func (ticker *manualTicker) Stop() {
	ticker.owner.remove(ticker)
}

func (ticker *manualTicker) fire(now time.Time) {
	ticker.mu.Lock()
	if now.Before(ticker.next) {
		ticker.mu.Unlock()
		return
	}
	for !now.Before(ticker.next) {
		ticker.next = ticker.next.Add(ticker.interval)
	}
	ticker.mu.Unlock()

	select {
	case ticker.ch <- now:
	default:
	}
}
