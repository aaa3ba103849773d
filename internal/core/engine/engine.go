// Package engine wires the timer core together and exposes it to surfaces,
// hotkeys and the control channel. All state lives on one event loop; the
// exported methods are safe to call from any goroutine.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/focus"
	"overtimer/internal/core/geometry"
	"overtimer/internal/core/hotkey"
	"overtimer/internal/core/lifecycle"
	"overtimer/internal/core/loop"
	"overtimer/internal/core/model"
	"overtimer/internal/core/presets"
	"overtimer/internal/core/registry"
	"overtimer/internal/core/scheduler"
	"overtimer/internal/core/syncproto"
)

// Geometry places new timers and persists their bounds.
type Geometry interface {
	registry.Placer
	lifecycle.Placements
	Flush()
}

// Options wire an Engine.
type Options struct {
	Factory           lifecycle.Factory
	Geometry          Geometry
	Clock             clock.Clock
	TickInterval      time.Duration
	KeepOnTopInterval time.Duration
	// Presets resolves preset ids; defaults to the built-in set.
	Presets func(id string) (model.TimerPreset, bool)
}

// Status describes the periodic work currently scheduled.
type Status struct {
	Instances       int  `json:"instances" yaml:"instances"`
	TickerActive    bool `json:"tickerActive" yaml:"ticker_active"`
	KeepOnTopActive bool `json:"keepOnTopActive" yaml:"keep_on_top_active"`
}

// Engine is the timer core.
type Engine struct {
	loop      *loop.Loop
	hub       *syncproto.Hub
	registry  *registry.Registry
	scheduler *scheduler.Scheduler
	surfaces  *lifecycle.Manager
	router    *focus.Router
	geometry  Geometry
	presets   func(id string) (model.TimerPreset, bool)

	audio model.GlobalAudioState
}

// New builds an engine. Nothing runs until Run is called.
func New(options Options) *Engine {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Presets == nil {
		options.Presets = presets.ByID
	}

	engine := &Engine{
		loop:     loop.New(),
		hub:      syncproto.NewHub(),
		router:   &focus.Router{},
		geometry: options.Geometry,
		presets:  options.Presets,
		audio:    model.DefaultGlobalAudio(),
	}
	engine.registry = registry.New(registry.NotifierFunc(engine.pushState), options.Clock)
	engine.scheduler = scheduler.New(engine.registry, tickSink{engine}, options.Clock, engine.loop, options.TickInterval)
	engine.surfaces = lifecycle.New(lifecycle.Config{
		Factory:           options.Factory,
		Host:              host{engine},
		Registry:          engine.registry,
		Hub:               engine.hub,
		Placements:        options.Geometry,
		Focus:             engine.router,
		Scheduler:         engine.scheduler,
		Poster:            engine.loop,
		Clock:             options.Clock,
		KeepOnTopInterval: options.KeepOnTopInterval,
	})
	return engine
}

// Run drives the event loop until ctx is cancelled.
func (engine *Engine) Run(ctx context.Context) error {
	logrus.Debug("timer core running")
	return engine.loop.Run(ctx)
}

// Done is closed when Run has returned.
func (engine *Engine) Done() <-chan struct{} {
	return engine.loop.Done()
}

// Shutdown writes pending placements and then closes every timer. Call it
// before cancelling Run.
func (engine *Engine) Shutdown(ctx context.Context) error {
	if engine.geometry != nil {
		engine.geometry.Flush()
	}
	return engine.loop.Do(ctx, engine.surfaces.CloseAll)
}

// AttachLauncher routes launcher-bound pushes to peer and sends it the
// current global audio state.
func (engine *Engine) AttachLauncher(peer syncproto.Peer) {
	engine.post("attach launcher", func() {
		engine.hub.SetLauncher(peer)
		if peer != nil {
			peer.Deliver(syncproto.GlobalAudioPush(engine.audio))
		}
	})
}

// BindHotkeys registers global hotkeys. Bindings that fail are logged and
// skipped; the returned dispatcher must be closed on exit.
func (engine *Engine) BindHotkeys(registrar hotkey.Registrar, bindings []hotkey.Binding) (*hotkey.Dispatcher, error) {
	dispatcher := hotkey.NewDispatcher(registrar, engine.loop, engine.router, loopControls{engine})
	return dispatcher, dispatcher.RegisterAll(bindings)
}

// CreateTimer opens a new timer for preset and waits for its surface.
func (engine *Engine) CreateTimer(ctx context.Context, preset *model.TimerPreset) (model.InstanceID, error) {
	var (
		id  model.InstanceID
		err error
	)
	if doErr := engine.loop.Do(ctx, func() { id, err = engine.create(preset) }); doErr != nil {
		return "", doErr
	}
	return id, err
}

// CreateTimerByID opens a new timer for a known preset id.
func (engine *Engine) CreateTimerByID(ctx context.Context, presetID string) (model.InstanceID, error) {
	preset, ok := engine.presets(presetID)
	if !ok {
		return "", fmt.Errorf("%w: unknown preset %q", model.ErrInvalidPreset, presetID)
	}
	return engine.CreateTimer(ctx, &preset)
}

// GetState returns a snapshot of the instance; ok is false for unknown ids.
func (engine *Engine) GetState(ctx context.Context, id model.InstanceID) (instance model.TimerInstance, ok bool, err error) {
	err = engine.loop.Do(ctx, func() { instance, ok = engine.registry.Get(id) })
	return instance, ok, err
}

// ListActive lists open timers in creation order.
func (engine *Engine) ListActive(ctx context.Context) ([]model.TimerSummary, error) {
	var summaries []model.TimerSummary
	err := engine.loop.Do(ctx, func() { summaries = engine.registry.Summaries() })
	return summaries, err
}

// GlobalAudio returns the shared audio state.
func (engine *Engine) GlobalAudio(ctx context.Context) (model.GlobalAudioState, error) {
	var audio model.GlobalAudioState
	err := engine.loop.Do(ctx, func() { audio = engine.audio })
	return audio, err
}

// Focused returns the logically focused instance.
func (engine *Engine) Focused(ctx context.Context) (id model.InstanceID, ok bool, err error) {
	err = engine.loop.Do(ctx, func() { id, ok = engine.router.Current() })
	return id, ok, err
}

// Status reports which periodic tasks are scheduled.
func (engine *Engine) Status(ctx context.Context) (Status, error) {
	var status Status
	err := engine.loop.Do(ctx, func() {
		status = Status{
			Instances:       engine.registry.Len(),
			TickerActive:    engine.scheduler.Active(),
			KeepOnTopActive: engine.surfaces.KeepOnTopActive(),
		}
	})
	return status, err
}

// StartTimer starts the instance's countdown.
func (engine *Engine) StartTimer(id model.InstanceID) {
	engine.post("start", func() { engine.start(id) })
}

// PauseTimer pauses the instance.
func (engine *Engine) PauseTimer(id model.InstanceID) {
	engine.post("pause", func() { engine.registry.Pause(id) })
}

// ResetTimer restores the full countdown without changing the running flag.
func (engine *Engine) ResetTimer(id model.InstanceID) {
	engine.post("reset", func() { engine.registry.Reset(id) })
}

// SetAudioMode changes how the instance voices cues.
func (engine *Engine) SetAudioMode(id model.InstanceID, mode model.AudioMode) {
	engine.post("set audio mode", func() { engine.registry.SetAudioMode(id, mode) })
}

// SetVolume sets the per-instance volume.
func (engine *Engine) SetVolume(id model.InstanceID, volume float64) {
	engine.post("set volume", func() { engine.registry.SetVolume(id, volume) })
}

// SetMute sets the per-instance mute flag.
func (engine *Engine) SetMute(id model.InstanceID, muted bool) {
	engine.post("set mute", func() { engine.registry.SetMute(id, muted) })
}

// UpdatePosition records a surface move.
func (engine *Engine) UpdatePosition(id model.InstanceID, position model.Position) {
	engine.post("update position", func() { engine.surfaces.GeometryChanged(id, &position, nil) })
}

// UpdateSize records a surface resize.
func (engine *Engine) UpdateSize(id model.InstanceID, size model.Size) {
	engine.post("update size", func() { engine.surfaces.GeometryChanged(id, nil, &size) })
}

// CloseTimer closes the instance and its surface.
func (engine *Engine) CloseTimer(id model.InstanceID) {
	engine.post("close", func() { engine.surfaces.Close(id) })
}

// FocusTimer raises the instance's surface and makes it the hotkey target.
func (engine *Engine) FocusTimer(id model.InstanceID) {
	engine.post("focus", func() {
		if engine.surfaces.Focus(id) {
			engine.router.Notify(id)
		}
	})
}

// NotifyFocused records that the user interacted with the instance.
func (engine *Engine) NotifyFocused(id model.InstanceID) {
	engine.post("notify focused", func() {
		if engine.surfaces.Has(id) {
			engine.router.Notify(id)
		}
	})
}

// SetGlobalVolume changes the shared volume; surfaces are told only when the
// clamped value differs. NaN is ignored.
func (engine *Engine) SetGlobalVolume(volume float64) {
	if math.IsNaN(volume) {
		logrus.Warn("set global volume: ignoring NaN")
		return
	}
	engine.post("set global volume", func() {
		clamped := model.ClampVolume(volume)
		if clamped == engine.audio.Volume {
			return
		}
		engine.audio.Volume = clamped
		engine.hub.Broadcast(syncproto.GlobalAudioPush(engine.audio))
	})
}

// ToggleGlobalMute flips the shared mute flag.
func (engine *Engine) ToggleGlobalMute() {
	engine.post("toggle global mute", func() {
		engine.audio.IsMuted = !engine.audio.IsMuted
		engine.hub.Broadcast(syncproto.GlobalAudioPush(engine.audio))
	})
}

func (engine *Engine) post(operation string, fn func()) {
	if !engine.loop.Post(fn) {
		logrus.WithField("operation", operation).Debug("timer core stopped, request dropped")
	}
}

func (engine *Engine) create(preset *model.TimerPreset) (model.InstanceID, error) {
	var placer registry.Placer = registry.PlacerFunc(gridPlacement)
	if engine.geometry != nil {
		placer = engine.geometry
	}
	id, err := engine.registry.Create(preset, placer)
	if err != nil {
		return "", err
	}
	if err := engine.surfaces.Materialize(id); err != nil {
		return "", err
	}

	instance, _ := engine.registry.Get(id)
	engine.hub.SendTo(id, syncproto.GlobalAudioPush(engine.audio))
	engine.hub.ToLauncher(syncproto.TimerCreatedPush(instance.Summary()))
	logrus.WithFields(logrus.Fields{
		"instance": id,
		"preset":   instance.Preset.ID,
		"position": instance.Position,
	}).Info("timer created")
	return id, nil
}

func gridPlacement(preset model.TimerPreset, ordinal int) model.Bounds {
	size := geometry.DefaultSize
	if preset.InitialSize != nil {
		size = *preset.InitialSize
	}
	return model.NewBounds(geometry.FallbackPosition(ordinal), size)
}

func (engine *Engine) start(id model.InstanceID) {
	engine.registry.Start(id)
	if instance, ok := engine.registry.Get(id); ok && instance.IsRunning {
		engine.scheduler.Ensure()
	}
}

func (engine *Engine) pushState(instance model.TimerInstance) {
	engine.hub.SendTo(instance.InstanceID, syncproto.StateChangedPush(instance))
}

type tickSink struct{ engine *Engine }

func (sink tickSink) StateChanged(instance model.TimerInstance) {
	sink.engine.pushState(instance)
}

func (sink tickSink) CueReached(cue model.Cue) {
	sink.engine.hub.SendTo(cue.InstanceID, syncproto.CuePush(cue))
}
