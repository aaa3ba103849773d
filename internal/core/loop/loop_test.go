package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	loop := New()
	go func() {
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return loop
}

func TestPostRunsInOrder(t *testing.T) {
	loop := startLoop(t)

	var order []int
	for i := 0; i < 5; i++ {
		value := i
		require.True(t, loop.Post(func() { order = append(order, value) }))
	}
	require.NoError(t, loop.Do(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPostFromLoopDoesNotBlock(t *testing.T) {
	loop := startLoop(t)

	ran := make(chan struct{})
	loop.Post(func() {
		loop.Post(func() { close(ran) })
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("nested post never ran")
	}
}

func TestPanicIsRecovered(t *testing.T) {
	loop := startLoop(t)

	loop.Post(func() { panic("boom") })
	executed := false
	require.NoError(t, loop.Do(context.Background(), func() { executed = true }))
	assert.True(t, executed)
}

func TestStoppedLoopRejectsWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := New()
	go func() {
		_ = loop.Run(ctx)
	}()
	cancel()
	<-loop.Done()

	assert.False(t, loop.Post(func() {}))
	assert.ErrorIs(t, loop.Do(context.Background(), func() {}), ErrStopped)
}

func TestDoHonoursContext(t *testing.T) {
	loop := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := loop.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
