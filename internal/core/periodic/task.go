// Package periodic implements the cancellable time-driven side effects of the
// core: fixed-period tasks that run on the event loop and keyed debouncers.
package periodic

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/loop"
)

// Config describes a periodic task.
type Config struct {
	Name     string
	Interval time.Duration
	Clock    clock.Clock
	Poster   loop.Poster
}

// Task fires a handler on the event loop at a fixed interval.
//
// A trigger that arrives while the previous one is still queued or running
// is dropped, so two ticks never overlap and ticks never pile up. After Stop
// returns no further handler call starts, although one already executing is
// left to finish.
type Task struct {
	config  Config
	handler func(now time.Time)

	mu         sync.Mutex
	running    bool
	generation uint64
	stopCh     chan struct{}

	busy    atomic.Bool
	dropped atomic.Uint64
}

// New creates a stopped task.
func New(config Config, handler func(now time.Time)) *Task {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	return &Task{config: config, handler: handler}
}

// Start begins ticking. It reports false if the task was already running.
func (task *Task) Start() bool {
	task.mu.Lock()
	defer task.mu.Unlock()
	if task.running {
		return false
	}
	task.running = true
	task.generation++
	task.stopCh = make(chan struct{})

	ticker := task.config.Clock.NewTicker(task.config.Interval)
	go task.run(task.generation, ticker, task.stopCh)

	logrus.WithField("task", task.config.Name).Debug("periodic task started")
	return true
}

// Stop cancels the task. It reports false if the task was not running.
func (task *Task) Stop() bool {
	task.mu.Lock()
	defer task.mu.Unlock()
	if !task.running {
		return false
	}
	task.running = false
	close(task.stopCh)
	task.stopCh = nil

	logrus.WithField("task", task.config.Name).Debug("periodic task stopped")
	return true
}

// Running reports whether the task is scheduled.
func (task *Task) Running() bool {
	task.mu.Lock()
	defer task.mu.Unlock()
	return task.running
}

// Dropped returns how many triggers were skipped because a tick was in flight.
func (task *Task) Dropped() uint64 {
	return task.dropped.Load()
}

func (task *Task) run(generation uint64, ticker clock.Ticker, stopCh <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C():
			task.trigger(generation)
		}
	}
}

func (task *Task) trigger(generation uint64) {
	if !task.busy.CompareAndSwap(false, true) {
		task.dropped.Add(1)
		logrus.WithField("task", task.config.Name).Debug("periodic trigger dropped, previous tick still in flight")
		return
	}

	posted := task.config.Poster.Post(func() {
		defer task.busy.Store(false)
		if !task.current(generation) {
			return
		}
		task.handler(task.config.Clock.Now())
	})
	if !posted {
		task.busy.Store(false)
	}
}

func (task *Task) current(generation uint64) bool {
	task.mu.Lock()
	defer task.mu.Unlock()
	return task.running && task.generation == generation
}
