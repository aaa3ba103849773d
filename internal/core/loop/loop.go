// Package loop runs the core's single cooperative event loop.
//
// Every mutation of core state is posted to the loop and executed on its one
// goroutine, so components owned by the loop need no locking. Posting never
// blocks; the queue is unbounded and drained in FIFO order.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrStopped indicates the loop is no longer running.
var ErrStopped = errors.New("event loop stopped")

// Poster accepts work for the loop.
type Poster interface {
	Post(fn func()) bool
}

// Loop is a FIFO work queue drained by a single goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

// New creates an idle loop. Call Run to start draining it.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It returns false when the loop has stopped.
func (loop *Loop) Post(fn func()) bool {
	loop.mu.Lock()
	if loop.stopped {
		loop.mu.Unlock()
		return false
	}
	loop.queue = append(loop.queue, fn)
	loop.mu.Unlock()

	select {
	case loop.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from the loop goroutine itself.
func (loop *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !loop.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-loop.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled. Work still queued at that
// point is discarded.
func (loop *Loop) Run(ctx context.Context) error {
	loop.mu.Lock()
	if loop.started {
		loop.mu.Unlock()
		return fmt.Errorf("run loop: already started")
	}
	loop.started = true
	loop.mu.Unlock()

	defer func() {
		loop.mu.Lock()
		loop.stopped = true
		loop.queue = nil
		loop.mu.Unlock()
		close(loop.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-loop.wake:
		}

		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			loop.mu.Lock()
			if len(loop.queue) == 0 {
				loop.mu.Unlock()
				break
			}
			fn := loop.queue[0]
			loop.queue[0] = nil
			loop.queue = loop.queue[1:]
			loop.mu.Unlock()

			run(fn)
		}
	}
}

// Done is closed once Run has returned.
func (loop *Loop) Done() <-chan struct{} {
	return loop.done
}

func run(fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.WithField("panic", recovered).Error("event loop task panicked")
		}
	}()
	fn()
}
