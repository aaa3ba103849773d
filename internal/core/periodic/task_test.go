package periodic

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/loop"
)

// heldPoster queues work without running it so tests control execution.
type heldPoster struct {
	mu   sync.Mutex
	work []func()
}

func (poster *heldPoster) Post(fn func()) bool {
	poster.mu.Lock()
	defer poster.mu.Unlock()
	poster.work = append(poster.work, fn)
	return true
}

func (poster *heldPoster) runAll() int {
	poster.mu.Lock()
	work := poster.work
	poster.work = nil
	poster.mu.Unlock()
	for _, fn := range work {
		fn()
	}
	return len(work)
}

func (poster *heldPoster) queued() int {
	poster.mu.Lock()
	defer poster.mu.Unlock()
	return len(poster.work)
}

func TestTaskRunsHandlerOnLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventLoop := loop.New()
	go func() { _ = eventLoop.Run(ctx) }()

	manual := clock.NewManual(time.Unix(0, 0))
	var calls atomic.Int32
	task := New(Config{Name: "test", Interval: 100 * time.Millisecond, Clock: manual, Poster: eventLoop}, func(time.Time) {
		calls.Add(1)
	})

	require.True(t, task.Start())
	require.False(t, task.Start())
	require.Eventually(t, func() bool {
		manual.Advance(100 * time.Millisecond)
		return calls.Load() > 0
	}, time.Second, 5*time.Millisecond)

	require.True(t, task.Stop())
	assert.False(t, task.Running())
	assert.Eventually(t, func() bool { return manual.ActiveTickers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestTaskDropsTriggerWhileBusy(t *testing.T) {
	poster := &heldPoster{}
	manual := clock.NewManual(time.Unix(0, 0))
	task := New(Config{Name: "busy", Interval: 100 * time.Millisecond, Clock: manual, Poster: poster}, func(time.Time) {})
	task.Start()
	defer task.Stop()

	require.Eventually(t, func() bool {
		manual.Advance(100 * time.Millisecond)
		return task.Dropped() > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, poster.queued(), "only one tick may be in flight")
}

func TestStoppedTaskSkipsQueuedTick(t *testing.T) {
	poster := &heldPoster{}
	manual := clock.NewManual(time.Unix(0, 0))
	var calls atomic.Int32
	task := New(Config{Name: "stop", Interval: 100 * time.Millisecond, Clock: manual, Poster: poster}, func(time.Time) {
		calls.Add(1)
	})
	task.Start()

	require.Eventually(t, func() bool {
		manual.Advance(100 * time.Millisecond)
		return poster.queued() == 1
	}, time.Second, 5*time.Millisecond)

	task.Stop()
	require.Equal(t, 1, poster.runAll())
	assert.Zero(t, calls.Load())
}

func TestDebouncerCoalesces(t *testing.T) {
	debouncer := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		value := int32(i)
		debouncer.Trigger("a", func() {
			calls.Add(1)
			last.Store(value)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(5), last.Load())
	assert.Zero(t, debouncer.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	debouncer := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	debouncer.Trigger("a", func() { calls.Add(1) })
	debouncer.Trigger("b", func() { calls.Add(1) })

	assert.True(t, debouncer.Cancel("a"))
	assert.False(t, debouncer.Cancel("missing"))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	debouncer.Trigger("c", func() { calls.Add(1) })
	debouncer.CancelAll()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerFlush(t *testing.T) {
	debouncer := NewDebouncer(time.Hour)
	var calls atomic.Int32
	debouncer.Trigger("a", func() { calls.Add(1) })
	debouncer.Trigger("b", func() { calls.Add(1) })

	debouncer.Flush()
	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, debouncer.Pending())
}
