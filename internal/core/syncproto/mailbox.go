package syncproto

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// DefaultMailboxSize is the push buffer used when none is configured.
const DefaultMailboxSize = 64

// Mailbox is an asynchronous Peer. Pushes are handed to the consumer in order
// on the mailbox's own goroutine; when the buffer is full new pushes are
// dropped rather than blocking the core.
type Mailbox struct {
	name    string
	handler func(Push)
	queue   chan Push
	done    chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	dropped   atomic.Uint64
}

// NewMailbox starts a mailbox that feeds handler.
func NewMailbox(name string, size int, handler func(Push)) *Mailbox {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	mailbox := &Mailbox{
		name:    name,
		handler: handler,
		queue:   make(chan Push, size),
		done:    make(chan struct{}),
	}
	go mailbox.run()
	return mailbox
}

// Deliver enqueues push without blocking.
func (mailbox *Mailbox) Deliver(push Push) {
	mailbox.mu.RLock()
	defer mailbox.mu.RUnlock()
	if mailbox.closed {
		return
	}
	select {
	case mailbox.queue <- push:
	default:
		mailbox.dropped.Add(1)
		logrus.WithFields(logrus.Fields{"peer": mailbox.name, "push": push.Kind}).Warn("peer mailbox full, push dropped")
	}
}

// Dropped returns how many pushes were discarded.
func (mailbox *Mailbox) Dropped() uint64 {
	return mailbox.dropped.Load()
}

// Close stops accepting pushes. Already queued pushes are still handled.
func (mailbox *Mailbox) Close() {
	mailbox.closeOnce.Do(func() {
		mailbox.mu.Lock()
		mailbox.closed = true
		close(mailbox.queue)
		mailbox.mu.Unlock()
	})
}

// Done is closed once the consumer goroutine has exited.
func (mailbox *Mailbox) Done() <-chan struct{} {
	return mailbox.done
}

func (mailbox *Mailbox) run() {
	defer close(mailbox.done)
	for push := range mailbox.queue {
		mailbox.handle(push)
	}
}

func (mailbox *Mailbox) handle(push Push) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.WithFields(logrus.Fields{
				"peer":  mailbox.name,
				"push":  push.Kind,
				"panic": recovered,
			}).Error("peer handler panicked")
		}
	}()
	mailbox.handler(push)
}
