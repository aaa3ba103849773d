// Package scheduler drives every running timer from one shared periodic tick.
package scheduler

import (
	"time"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/loop"
	"overtimer/internal/core/model"
	"overtimer/internal/core/periodic"
	"overtimer/internal/core/registry"
)

// DefaultInterval is the target tick period.
const DefaultInterval = 100 * time.Millisecond

// Sink receives what a tick produced.
type Sink interface {
	StateChanged(instance model.TimerInstance)
	CueReached(cue model.Cue)
}

// Scheduler advances all running instances by the same wall-clock delta.
// Ensure, Tick and Stop must be called from the event loop.
type Scheduler struct {
	registry *registry.Registry
	sink     Sink
	clock    clock.Clock
	task     *periodic.Task
	lastTick time.Time
}

// New creates a suspended scheduler whose ticks are posted to poster.
func New(reg *registry.Registry, sink Sink, clk clock.Clock, poster loop.Poster, interval time.Duration) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	scheduler := &Scheduler{registry: reg, sink: sink, clock: clk}
	scheduler.task = periodic.New(periodic.Config{
		Name:     "tick",
		Interval: interval,
		Clock:    clk,
		Poster:   poster,
	}, scheduler.Tick)
	return scheduler
}

// Ensure activates the scheduler if it is suspended. The first delta is
// measured from this call.
func (scheduler *Scheduler) Ensure() {
	if scheduler.task.Start() {
		scheduler.lastTick = scheduler.clock.Now()
		logrus.Debug("tick scheduler activated")
	}
}

// Tick advances running instances by the time elapsed since the previous tick
// and suspends the scheduler once nothing is running.
func (scheduler *Scheduler) Tick(now time.Time) {
	delta := now.Sub(scheduler.lastTick).Seconds()
	scheduler.lastTick = now

	if delta > 0 {
		for _, id := range scheduler.registry.IDs() {
			step, changed := scheduler.registry.Advance(id, delta)
			if !changed {
				continue
			}
			scheduler.sink.StateChanged(step.Counted)
			for _, cue := range step.Cues {
				scheduler.sink.CueReached(cue)
			}
			if step.Looped {
				logrus.WithField("instance", id).Debug("timer looped")
				scheduler.sink.StateChanged(step.Restarted)
			}
		}
	}

	if !scheduler.registry.AnyRunning() {
		scheduler.Stop()
	}
}

// Stop suspends the scheduler. No tick starts after Stop returns.
func (scheduler *Scheduler) Stop() {
	if scheduler.task.Stop() {
		logrus.Debug("tick scheduler suspended")
	}
}

// Active reports whether the periodic trigger is live.
func (scheduler *Scheduler) Active() bool {
	return scheduler.task.Running()
}

// Dropped returns the number of triggers skipped because a tick was in flight.
func (scheduler *Scheduler) Dropped() uint64 {
	return scheduler.task.Dropped()
}
