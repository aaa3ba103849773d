// Package registry owns the authoritative state of every open timer.
//
// The registry is not safe for concurrent use: it belongs to the core event
// loop and is only touched from there. Callers receive copies of instance
// state, never references into it. Mutations addressed to an unknown instance
// are silent no-ops, because surfaces routinely race with their own teardown.
package registry

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/model"
	"overtimer/internal/validate"
)

// Notifier receives a snapshot whenever externally visible state changes.
type Notifier interface {
	StateChanged(instance model.TimerInstance)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(instance model.TimerInstance)

// StateChanged calls fn.
func (fn NotifierFunc) StateChanged(instance model.TimerInstance) {
	fn(instance)
}

// Placer computes the initial geometry of a new instance. ordinal is the
// number of instances already open.
type Placer interface {
	Place(preset model.TimerPreset, ordinal int) model.Bounds
}

// PlacerFunc adapts a function to Placer.
type PlacerFunc func(preset model.TimerPreset, ordinal int) model.Bounds

// Place calls fn.
func (fn PlacerFunc) Place(preset model.TimerPreset, ordinal int) model.Bounds {
	return fn(preset, ordinal)
}

// Default per-instance audio settings.
const (
	DefaultAudioMode = model.AudioVoice
	DefaultVolume    = 1.0
)

type entry struct {
	instance model.TimerInstance
	fired    map[string]bool
}

// Registry maps instance ids to timer state, in creation order.
type Registry struct {
	notifier Notifier
	clock    clock.Clock
	entries  map[model.InstanceID]*entry
	order    []model.InstanceID
	sequence uint64
}

// New creates an empty registry. A nil clock uses the system clock.
func New(notifier Notifier, clk clock.Clock) *Registry {
	if notifier == nil {
		notifier = NotifierFunc(func(model.TimerInstance) {})
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Registry{
		notifier: notifier,
		clock:    clk,
		entries:  make(map[model.InstanceID]*entry),
	}
}

// Create inserts a stopped instance of preset with a full countdown.
func (registry *Registry) Create(preset *model.TimerPreset, placer Placer) (model.InstanceID, error) {
	if preset == nil {
		return "", fmt.Errorf("%w: preset is undefined", model.ErrInvalidPreset)
	}
	if err := validate.Struct(*preset); err != nil {
		return "", fmt.Errorf("%w: %s: %v", model.ErrInvalidPreset, preset.ID, err)
	}

	ordinal := len(registry.order)
	var bounds model.Bounds
	if placer != nil {
		bounds = placer.Place(*preset, ordinal)
	}

	registry.sequence++
	id := model.InstanceID(fmt.Sprintf("%s-%d-%d", preset.ID, registry.clock.Now().UnixMilli(), registry.sequence))

	registry.entries[id] = &entry{
		instance: model.TimerInstance{
			InstanceID: id,
			Preset:     *preset,
			Position:   bounds.Position(),
			Size:       bounds.Size(),
			TimeLeft:   preset.InitialTime,
			IsRunning:  false,
			AudioMode:  DefaultAudioMode,
			Volume:     DefaultVolume,
			IsMuted:    false,
		},
		fired: make(map[string]bool),
	}
	registry.order = append(registry.order, id)
	return id, nil
}

// Get returns a copy of the instance state.
func (registry *Registry) Get(id model.InstanceID) (model.TimerInstance, bool) {
	current, ok := registry.entries[id]
	if !ok {
		return model.TimerInstance{}, false
	}
	return current.instance, true
}

// Len returns the number of open instances.
func (registry *Registry) Len() int {
	return len(registry.order)
}

// IDs returns instance ids in creation order.
func (registry *Registry) IDs() []model.InstanceID {
	return append([]model.InstanceID(nil), registry.order...)
}

// Snapshots returns copies of every instance in creation order.
func (registry *Registry) Snapshots() []model.TimerInstance {
	snapshots := make([]model.TimerInstance, 0, len(registry.order))
	for _, id := range registry.order {
		snapshots = append(snapshots, registry.entries[id].instance)
	}
	return snapshots
}

// Summaries lists open instances for the launcher.
func (registry *Registry) Summaries() []model.TimerSummary {
	summaries := make([]model.TimerSummary, 0, len(registry.order))
	for _, id := range registry.order {
		summaries = append(summaries, registry.entries[id].instance.Summary())
	}
	return summaries
}

// AnyRunning reports whether at least one instance is counting down.
func (registry *Registry) AnyRunning() bool {
	for _, current := range registry.entries {
		if current.instance.IsRunning {
			return true
		}
	}
	return false
}

// Start sets the instance running. It reports whether anything changed.
func (registry *Registry) Start(id model.InstanceID) bool {
	current := registry.lookup(id, "start")
	if current == nil || current.instance.IsRunning {
		return false
	}
	current.instance.IsRunning = true
	registry.notify(current)
	return true
}

// Pause stops the countdown. It reports whether anything changed.
func (registry *Registry) Pause(id model.InstanceID) bool {
	current := registry.lookup(id, "pause")
	if current == nil || !current.instance.IsRunning {
		return false
	}
	current.instance.IsRunning = false
	registry.notify(current)
	return true
}

// Reset restores the full countdown and leaves the running flag untouched:
// a running timer keeps running from the top.
func (registry *Registry) Reset(id model.InstanceID) bool {
	current := registry.lookup(id, "reset")
	if current == nil {
		return false
	}
	current.instance.TimeLeft = current.instance.Preset.InitialTime
	clear(current.fired)
	registry.notify(current)
	return true
}

// SetAudioMode changes how cues are voiced. Unknown modes are ignored.
func (registry *Registry) SetAudioMode(id model.InstanceID, mode model.AudioMode) bool {
	if !mode.Valid() {
		logrus.WithFields(logrus.Fields{"instance": id, "mode": mode}).Warn("ignoring unknown audio mode")
		return false
	}
	current := registry.lookup(id, "set audio mode")
	if current == nil || current.instance.AudioMode == mode {
		return false
	}
	current.instance.AudioMode = mode
	registry.notify(current)
	return true
}

// SetVolume clamps volume to [0, 1]. A volume of exactly zero also mutes;
// raising the volume never unmutes. NaN is ignored.
func (registry *Registry) SetVolume(id model.InstanceID, volume float64) bool {
	current := registry.lookup(id, "set volume")
	if current == nil {
		return false
	}
	if math.IsNaN(volume) {
		logrus.WithField("instance", id).Warn("set volume: ignoring NaN")
		return false
	}
	clamped := model.ClampVolume(volume)
	muted := current.instance.IsMuted || clamped == 0
	if current.instance.Volume == clamped && current.instance.IsMuted == muted {
		return false
	}
	current.instance.Volume = clamped
	current.instance.IsMuted = muted
	registry.notify(current)
	return true
}

// SetMute sets the per-instance mute flag.
func (registry *Registry) SetMute(id model.InstanceID, muted bool) bool {
	current := registry.lookup(id, "set mute")
	if current == nil || current.instance.IsMuted == muted {
		return false
	}
	current.instance.IsMuted = muted
	registry.notify(current)
	return true
}

// UpdatePosition records a surface move. The owning surface already knows its
// own geometry, so no notification is sent.
func (registry *Registry) UpdatePosition(id model.InstanceID, position model.Position) bool {
	current := registry.lookup(id, "update position")
	if current == nil {
		return false
	}
	current.instance.Position = position
	return true
}

// UpdateSize records a surface resize without notifying.
func (registry *Registry) UpdateSize(id model.InstanceID, size model.Size) bool {
	current := registry.lookup(id, "update size")
	if current == nil {
		return false
	}
	current.instance.Size = size
	return true
}

// Remove deletes the instance. Removing an unknown id is a no-op.
func (registry *Registry) Remove(id model.InstanceID) bool {
	if _, ok := registry.entries[id]; !ok {
		return false
	}
	delete(registry.entries, id)
	for index, candidate := range registry.order {
		if candidate == id {
			registry.order = append(registry.order[:index], registry.order[index+1:]...)
			break
		}
	}
	return true
}

// Step is the outcome of advancing one instance by a tick delta.
type Step struct {
	// Counted is the state right after the decrement.
	Counted model.TimerInstance
	// Looped is set when the countdown hit zero and restarted.
	Looped bool
	// Restarted is the state after the loop reset, valid when Looped.
	Restarted model.TimerInstance
	// Cues lists audio cues newly reached by the decrement.
	Cues []model.Cue
}

// Advance counts a running instance down by delta seconds. When the countdown
// reaches zero it immediately restarts from the initial time and keeps running.
// ok is false if the instance is unknown, paused, or nothing changed.
func (registry *Registry) Advance(id model.InstanceID, delta float64) (step Step, ok bool) {
	current, exists := registry.entries[id]
	if !exists || !current.instance.IsRunning || delta <= 0 {
		return Step{}, false
	}

	previous := current.instance.TimeLeft
	current.instance.TimeLeft = math.Max(previous-delta, 0)
	if current.instance.TimeLeft == previous {
		return Step{}, false
	}

	step.Cues = current.reachedCues()
	step.Counted = current.instance

	if current.instance.TimeLeft == 0 {
		current.instance.TimeLeft = current.instance.Preset.InitialTime
		clear(current.fired)
		step.Looped = true
		step.Restarted = current.instance
	}
	return step, true
}

func (registry *Registry) lookup(id model.InstanceID, operation string) *entry {
	current, ok := registry.entries[id]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"instance":  id,
			"operation": operation,
		}).Debug(model.ErrUnknownInstance.Error())
		return nil
	}
	return current
}

func (registry *Registry) notify(current *entry) {
	registry.notifier.StateChanged(current.instance)
}
