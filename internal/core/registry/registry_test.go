package registry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/model"
	"overtimer/internal/core/presets"
)

type recorder struct {
	changes []model.TimerInstance
}

func (r *recorder) StateChanged(instance model.TimerInstance) {
	r.changes = append(r.changes, instance)
}

var fixedPlacer = PlacerFunc(func(_ model.TimerPreset, ordinal int) model.Bounds {
	return model.Bounds{X: ordinal * 200, Y: 0, Width: 192, Height: 130}
})

func newRegistry(t *testing.T) (*Registry, *recorder) {
	t.Helper()
	notes := &recorder{}
	return New(notes, clock.NewManual(time.Unix(1700000000, 0))), notes
}

func preset(t *testing.T, id string) *model.TimerPreset {
	t.Helper()
	found, ok := presets.ByID(id)
	require.True(t, ok)
	return &found
}

func TestCreateDefaults(t *testing.T) {
	registry, notes := newRegistry(t)

	id, err := registry.Create(preset(t, "backflow"), fixedPlacer)
	require.NoError(t, err)
	assert.Contains(t, string(id), "backflow-")

	instance, ok := registry.Get(id)
	require.True(t, ok)
	assert.False(t, instance.IsRunning)
	assert.Equal(t, 30.0, instance.TimeLeft)
	assert.Equal(t, model.AudioVoice, instance.AudioMode)
	assert.Equal(t, 1.0, instance.Volume)
	assert.False(t, instance.IsMuted)
	assert.Equal(t, model.Position{X: 0, Y: 0}, instance.Position)
	assert.Empty(t, notes.changes)
}

func TestCreateGivesDistinctIDs(t *testing.T) {
	registry, _ := newRegistry(t)

	first, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)
	second, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, []model.InstanceID{first, second}, registry.IDs())

	instance, _ := registry.Get(second)
	assert.Equal(t, 200, instance.Position.X)
}

func TestCreateRejectsInvalidPreset(t *testing.T) {
	registry, _ := newRegistry(t)

	_, err := registry.Create(nil, fixedPlacer)
	require.ErrorIs(t, err, model.ErrInvalidPreset)

	_, err = registry.Create(&model.TimerPreset{ID: "x", Title: "X"}, fixedPlacer)
	require.ErrorIs(t, err, model.ErrInvalidPreset)
	assert.Zero(t, registry.Len())
}

func TestStartPauseNotifyOnlyOnChange(t *testing.T) {
	registry, notes := newRegistry(t)
	id, err := registry.Create(preset(t, "reflect"), fixedPlacer)
	require.NoError(t, err)

	assert.True(t, registry.Start(id))
	assert.False(t, registry.Start(id))
	require.Len(t, notes.changes, 1)
	assert.True(t, notes.changes[0].IsRunning)

	assert.True(t, registry.Pause(id))
	assert.False(t, registry.Pause(id))
	require.Len(t, notes.changes, 2)
	assert.False(t, notes.changes[1].IsRunning)
}

func TestResetKeepsRunningFlag(t *testing.T) {
	registry, notes := newRegistry(t)
	id, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)

	registry.Start(id)
	_, ok := registry.Advance(id, 12)
	require.True(t, ok)

	assert.True(t, registry.Reset(id))
	instance, _ := registry.Get(id)
	assert.Equal(t, 30.0, instance.TimeLeft)
	assert.True(t, instance.IsRunning)

	before := len(notes.changes)
	registry.Reset(id)
	assert.Len(t, notes.changes, before+1)
}

func TestSetVolumeClampsAndMutesAtZero(t *testing.T) {
	registry, _ := newRegistry(t)
	id, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)

	registry.SetVolume(id, 1.7)
	instance, _ := registry.Get(id)
	assert.Equal(t, 1.0, instance.Volume)

	registry.SetVolume(id, -0.3)
	instance, _ = registry.Get(id)
	assert.Equal(t, 0.0, instance.Volume)
	assert.True(t, instance.IsMuted)

	registry.SetVolume(id, 0.5)
	instance, _ = registry.Get(id)
	assert.Equal(t, 0.5, instance.Volume)
	assert.True(t, instance.IsMuted)

	registry.SetMute(id, false)
	instance, _ = registry.Get(id)
	assert.False(t, instance.IsMuted)
}

func TestSetVolumeIgnoresNaN(t *testing.T) {
	registry, notes := newRegistry(t)
	id, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)
	require.True(t, registry.SetVolume(id, 0.6))
	changes := len(notes.changes)

	assert.False(t, registry.SetVolume(id, math.NaN()))
	assert.False(t, registry.SetVolume(id, math.NaN()))
	assert.Len(t, notes.changes, changes)

	instance, _ := registry.Get(id)
	assert.Equal(t, 0.6, instance.Volume)
	assert.False(t, instance.IsMuted)

	registry.SetVolume(id, math.Inf(1))
	instance, _ = registry.Get(id)
	assert.Equal(t, 1.0, instance.Volume)
}

func TestSetAudioModeIgnoresUnknown(t *testing.T) {
	registry, notes := newRegistry(t)
	id, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)

	assert.False(t, registry.SetAudioMode(id, "loud"))
	assert.True(t, registry.SetAudioMode(id, model.AudioBeep))
	assert.Len(t, notes.changes, 1)
}

func TestGeometryUpdatesAreSilent(t *testing.T) {
	registry, notes := newRegistry(t)
	id, err := registry.Create(preset(t, "fire"), fixedPlacer)
	require.NoError(t, err)

	assert.True(t, registry.UpdatePosition(id, model.Position{X: 40, Y: 50}))
	assert.True(t, registry.UpdateSize(id, model.Size{Width: 300, Height: 200}))
	assert.Empty(t, notes.changes)

	instance, _ := registry.Get(id)
	assert.Equal(t, model.Position{X: 40, Y: 50}, instance.Position)
	assert.Equal(t, model.Size{Width: 300, Height: 200}, instance.Size)
}

func TestUnknownInstanceIsNoop(t *testing.T) {
	registry, notes := newRegistry(t)

	assert.False(t, registry.Start("missing"))
	assert.False(t, registry.Reset("missing"))
	assert.False(t, registry.SetVolume("missing", 0.2))
	assert.False(t, registry.UpdatePosition("missing", model.Position{}))
	assert.False(t, registry.Remove("missing"))
	assert.Empty(t, notes.changes)
}

func TestRemoveIsIdempotent(t *testing.T) {
	registry, _ := newRegistry(t)
	first, _ := registry.Create(preset(t, "fire"), fixedPlacer)
	second, _ := registry.Create(preset(t, "reflect"), fixedPlacer)

	assert.True(t, registry.Remove(first))
	assert.False(t, registry.Remove(first))
	assert.Equal(t, []model.InstanceID{second}, registry.IDs())
	_, ok := registry.Get(first)
	assert.False(t, ok)
}

func TestAdvanceSkipsPausedInstances(t *testing.T) {
	registry, _ := newRegistry(t)
	id, _ := registry.Create(preset(t, "fire"), fixedPlacer)

	_, ok := registry.Advance(id, 1)
	assert.False(t, ok)
	assert.False(t, registry.AnyRunning())
}

func TestAdvanceLoopsAtZero(t *testing.T) {
	registry, _ := newRegistry(t)
	id, _ := registry.Create(preset(t, "fire"), fixedPlacer)
	registry.Start(id)

	_, ok := registry.Advance(id, 29.5)
	require.True(t, ok)

	step, ok := registry.Advance(id, 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, step.Counted.TimeLeft)
	assert.True(t, step.Looped)
	assert.Equal(t, 30.0, step.Restarted.TimeLeft)
	assert.True(t, step.Restarted.IsRunning)
	require.Len(t, step.Cues, 1)
	assert.Equal(t, model.CueCompletion, step.Cues[0].Kind)
	assert.Equal(t, "fire", step.Cues[0].Sound)
}

func TestCuesFireOncePerCycle(t *testing.T) {
	registry, _ := newRegistry(t)
	id, _ := registry.Create(preset(t, "fire"), fixedPlacer)
	registry.Start(id)

	step, _ := registry.Advance(id, 23.5)
	require.Len(t, step.Cues, 1)
	assert.Equal(t, model.CueWarning, step.Cues[0].Kind)
	assert.Equal(t, "fire-in", step.Cues[0].Sound)

	step, _ = registry.Advance(id, 0.2)
	assert.Empty(t, step.Cues)

	step, _ = registry.Advance(id, 0.5)
	require.Len(t, step.Cues, 1)
	assert.Equal(t, model.CueCountdown, step.Cues[0].Kind)
	assert.Equal(t, 5, step.Cues[0].Second)
	assert.Equal(t, "5", step.Cues[0].Sound)

	registry.Reset(id)
	step, _ = registry.Advance(id, 23.5)
	require.Len(t, step.Cues, 1, "reset starts a new cycle")
}

func TestBeepAndSilentModes(t *testing.T) {
	registry, _ := newRegistry(t)
	id, _ := registry.Create(preset(t, "lightning"), fixedPlacer)
	registry.Start(id)
	registry.SetAudioMode(id, model.AudioBeep)

	step, _ := registry.Advance(id, 26.5)
	require.Len(t, step.Cues, 1)
	assert.Equal(t, model.SoundBeepShort, step.Cues[0].Sound)

	step, _ = registry.Advance(id, 4)
	require.Len(t, step.Cues, 1)
	assert.Equal(t, model.SoundBeepLong, step.Cues[0].Sound)

	registry.SetAudioMode(id, model.AudioSilent)
	step, _ = registry.Advance(id, 24.5)
	assert.Empty(t, step.Cues)
}
