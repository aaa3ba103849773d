package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/loop"
	"overtimer/internal/core/model"
	"overtimer/internal/core/presets"
	"overtimer/internal/core/registry"
)

type sink struct {
	states []model.TimerInstance
	cues   []model.Cue
}

func (s *sink) StateChanged(instance model.TimerInstance) { s.states = append(s.states, instance) }
func (s *sink) CueReached(cue model.Cue)                 { s.cues = append(s.cues, cue) }

type nopPoster struct{}

func (nopPoster) Post(func()) bool { return true }

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Scheduler, *registry.Registry, *sink, *clock.Manual) {
	t.Helper()
	manual := clock.NewManual(start)
	reg := registry.New(nil, manual)
	out := &sink{}
	return New(reg, out, manual, nopPoster{}, 0), reg, out, manual
}

func create(t *testing.T, reg *registry.Registry, id string) model.InstanceID {
	t.Helper()
	preset, ok := presets.ByID(id)
	require.True(t, ok)
	instance, err := reg.Create(&preset, nil)
	require.NoError(t, err)
	return instance
}

func timeLeft(t *testing.T, reg *registry.Registry, id model.InstanceID) float64 {
	t.Helper()
	instance, ok := reg.Get(id)
	require.True(t, ok)
	return instance.TimeLeft
}

func TestTickUsesElapsedDelta(t *testing.T) {
	scheduler, reg, out, _ := setup(t)
	id := create(t, reg, "reflect")
	reg.Start(id)
	scheduler.Ensure()
	defer scheduler.Stop()

	scheduler.Tick(start.Add(130 * time.Millisecond))
	scheduler.Tick(start.Add(250 * time.Millisecond))
	scheduler.Tick(start.Add(1250 * time.Millisecond))

	assert.InDelta(t, 35-1.25, timeLeft(t, reg, id), 1e-9)
	assert.Len(t, out.states, 3)
}

func TestBackflowScenario(t *testing.T) {
	scheduler, reg, out, _ := setup(t)
	id := create(t, reg, "backflow")
	reg.Start(id)
	scheduler.Ensure()
	defer scheduler.Stop()

	scheduler.Tick(start.Add(14 * time.Second))
	assert.InDelta(t, 16.0, timeLeft(t, reg, id), 1e-9)
	require.Len(t, out.cues, 1)
	assert.Equal(t, model.CueWarning, out.cues[0].Kind)
	assert.Equal(t, "backflow-in", out.cues[0].Sound)

	scheduler.Tick(start.Add(20 * time.Second))
	assert.InDelta(t, 10.0, timeLeft(t, reg, id), 1e-9)
	require.Len(t, out.cues, 2)
	assert.Equal(t, model.CueCompletion, out.cues[1].Kind)
	assert.Equal(t, "backflow", out.cues[1].Sound)

	out.states = nil
	scheduler.Tick(start.Add(30 * time.Second))
	instance, _ := reg.Get(id)
	assert.Equal(t, 30.0, instance.TimeLeft)
	assert.True(t, instance.IsRunning)
	require.Len(t, out.states, 2)
	assert.Equal(t, 0.0, out.states[0].TimeLeft)
	assert.Equal(t, 30.0, out.states[1].TimeLeft)
	assert.True(t, scheduler.Active())
}

func TestPausedInstanceIsUntouched(t *testing.T) {
	scheduler, reg, _, _ := setup(t)
	fire := create(t, reg, "fire")
	reflect := create(t, reg, "reflect")
	reg.Start(fire)
	reg.Start(reflect)
	scheduler.Ensure()
	defer scheduler.Stop()

	scheduler.Tick(start.Add(2 * time.Second))
	reg.Pause(fire)
	scheduler.Tick(start.Add(5 * time.Second))

	assert.InDelta(t, 28.0, timeLeft(t, reg, fire), 1e-9)
	assert.InDelta(t, 30.0, timeLeft(t, reg, reflect), 1e-9)
}

func TestSuspendsWhenNothingRuns(t *testing.T) {
	scheduler, reg, _, manual := setup(t)
	id := create(t, reg, "fire")
	reg.Start(id)
	scheduler.Ensure()
	require.True(t, scheduler.Active())
	require.Equal(t, 1, manual.ActiveTickers())

	reg.Pause(id)
	scheduler.Tick(start.Add(time.Second))
	assert.False(t, scheduler.Active())

	manual.Advance(time.Second)
	assert.InDelta(t, 30.0, timeLeft(t, reg, id), 1e-9)
}

func TestEnsureResetsDeltaBaseline(t *testing.T) {
	scheduler, reg, _, manual := setup(t)
	id := create(t, reg, "fire")

	manual.Set(start.Add(time.Minute))
	reg.Start(id)
	scheduler.Ensure()
	defer scheduler.Stop()

	scheduler.Tick(start.Add(time.Minute + time.Second))
	assert.InDelta(t, 29.0, timeLeft(t, reg, id), 1e-9)
}

func TestTicksArriveThroughLoop(t *testing.T) {
	manual := clock.NewManual(start)
	events := loop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		<-events.Done()
	}()
	go func() { _ = events.Run(ctx) }()

	reg := registry.New(nil, manual)
	scheduler := New(reg, &sink{}, manual, events, 100*time.Millisecond)
	id := create(t, reg, "fire")

	require.NoError(t, events.Do(ctx, func() {
		reg.Start(id)
		scheduler.Ensure()
	}))

	require.Eventually(t, func() bool {
		manual.Advance(100 * time.Millisecond)
		var left float64
		_ = events.Do(ctx, func() { left = timeLeftUnsafe(reg, id) })
		return left < 30
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, events.Do(ctx, func() {
		reg.Pause(id)
		scheduler.Stop()
	}))
}

func timeLeftUnsafe(reg *registry.Registry, id model.InstanceID) float64 {
	instance, _ := reg.Get(id)
	return instance.TimeLeft
}
