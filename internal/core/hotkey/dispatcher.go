// Package hotkey maps global key chords to timer actions. Start, pause, reset
// and cycling all target the logically focused timer.
package hotkey

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/focus"
	"overtimer/internal/core/loop"
	"overtimer/internal/core/model"
)

// Action is what a binding does when pressed.
type Action string

const (
	ActionLaunch    Action = "launch"
	ActionStart     Action = "start"
	ActionPause     Action = "pause"
	ActionReset     Action = "reset"
	ActionCycleNext Action = "cycle_next"
	ActionCyclePrev Action = "cycle_prev"
)

// Binding ties an accelerator to an action. PresetID is set for launch bindings.
type Binding struct {
	Accelerator string
	Action      Action
	PresetID    string
}

func (binding Binding) String() string {
	if binding.Action == ActionLaunch {
		return fmt.Sprintf("%s -> launch %s", binding.Accelerator, binding.PresetID)
	}
	return fmt.Sprintf("%s -> %s", binding.Accelerator, binding.Action)
}

// DefaultBindings returns the stock chords for the built-in presets.
func DefaultBindings() []Binding {
	return []Binding{
		{Accelerator: "CommandOrControl+Shift+B", Action: ActionLaunch, PresetID: "backflow"},
		{Accelerator: "CommandOrControl+Shift+F", Action: ActionLaunch, PresetID: "fire"},
		{Accelerator: "CommandOrControl+Shift+L", Action: ActionLaunch, PresetID: "lightning"},
		{Accelerator: "CommandOrControl+Shift+R", Action: ActionLaunch, PresetID: "reflect"},
		{Accelerator: "CommandOrControl+Shift+S", Action: ActionLaunch, PresetID: "fusestorm"},
		{Accelerator: "CommandOrControl+Shift+Up", Action: ActionStart},
		{Accelerator: "CommandOrControl+Shift+Down", Action: ActionPause},
		{Accelerator: "CommandOrControl+Shift+End", Action: ActionReset},
		{Accelerator: "CommandOrControl+Shift+Right", Action: ActionCycleNext},
		{Accelerator: "CommandOrControl+Shift+Left", Action: ActionCyclePrev},
	}
}

// Registrar installs OS-level global hotkeys. fn is called from an arbitrary
// goroutine each time the chord is pressed.
type Registrar interface {
	Register(accelerator Accelerator, fn func()) (unregister func(), err error)
}

// Controls is the slice of the core the dispatcher drives. Every method is
// called on the event loop.
type Controls interface {
	LaunchPreset(presetID string)
	StartTimer(id model.InstanceID)
	PauseTimer(id model.InstanceID)
	ResetTimer(id model.InstanceID)
	IndicateFocus(id model.InstanceID)
	OpenInstances() []model.InstanceID
}

// Dispatcher routes pressed chords onto the event loop.
type Dispatcher struct {
	registrar Registrar
	poster    loop.Poster
	router    *focus.Router
	controls  Controls

	mu          sync.Mutex
	unregisters []func()
}

// NewDispatcher creates a dispatcher. router must only be used on the loop.
func NewDispatcher(registrar Registrar, poster loop.Poster, router *focus.Router, controls Controls) *Dispatcher {
	return &Dispatcher{
		registrar: registrar,
		poster:    poster,
		router:    router,
		controls:  controls,
	}
}

// RegisterAll installs every binding it can. A binding that fails is skipped
// and reported in the returned error; the rest stay active.
func (dispatcher *Dispatcher) RegisterAll(bindings []Binding) error {
	var failures []error
	for _, binding := range bindings {
		if err := dispatcher.register(binding); err != nil {
			logrus.WithError(err).WithField("binding", binding.String()).Warn("global hotkey unavailable")
			failures = append(failures, err)
			continue
		}
		logrus.WithField("binding", binding.String()).Info("global hotkey registered")
	}
	return errors.Join(failures...)
}

func (dispatcher *Dispatcher) register(binding Binding) error {
	accelerator, err := ParseAccelerator(binding.Accelerator)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrHotkeyRegistration, err)
	}
	if binding.Action == ActionLaunch && binding.PresetID == "" {
		return fmt.Errorf("%w: %s: launch binding without preset", model.ErrHotkeyRegistration, accelerator)
	}

	unregister, err := dispatcher.registrar.Register(accelerator, func() {
		dispatcher.Fire(binding)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrHotkeyRegistration, accelerator, err)
	}

	dispatcher.mu.Lock()
	dispatcher.unregisters = append(dispatcher.unregisters, unregister)
	dispatcher.mu.Unlock()
	return nil
}

// Close removes every installed hotkey.
func (dispatcher *Dispatcher) Close() {
	dispatcher.mu.Lock()
	unregisters := dispatcher.unregisters
	dispatcher.unregisters = nil
	dispatcher.mu.Unlock()

	for _, unregister := range unregisters {
		if unregister != nil {
			unregister()
		}
	}
}

// Fire queues the binding's action on the event loop.
func (dispatcher *Dispatcher) Fire(binding Binding) {
	if !dispatcher.poster.Post(func() { dispatcher.Handle(binding) }) {
		logrus.WithField("binding", binding.String()).Debug("hotkey ignored, core stopped")
	}
}

// Handle performs the binding's action. It must run on the event loop.
func (dispatcher *Dispatcher) Handle(binding Binding) {
	switch binding.Action {
	case ActionLaunch:
		dispatcher.controls.LaunchPreset(binding.PresetID)
	case ActionStart:
		dispatcher.onFocused(binding.Action, dispatcher.controls.StartTimer)
	case ActionPause:
		dispatcher.onFocused(binding.Action, dispatcher.controls.PauseTimer)
	case ActionReset:
		dispatcher.onFocused(binding.Action, dispatcher.controls.ResetTimer)
	case ActionCycleNext:
		dispatcher.cycle(focus.Next)
	case ActionCyclePrev:
		dispatcher.cycle(focus.Prev)
	default:
		logrus.WithField("action", binding.Action).Warn("unknown hotkey action")
	}
}

func (dispatcher *Dispatcher) onFocused(action Action, apply func(model.InstanceID)) {
	id, ok := dispatcher.router.Current()
	if !ok {
		logrus.WithField("action", action).Info("no focused timer, hotkey ignored")
		return
	}
	apply(id)
}

func (dispatcher *Dispatcher) cycle(direction focus.Direction) {
	id, ok := dispatcher.router.Cycle(dispatcher.controls.OpenInstances(), direction)
	if !ok {
		logrus.WithField("direction", direction).Info("no timers open to cycle through")
		return
	}
	logrus.WithFields(logrus.Fields{"direction": direction, "instance": id}).Debug("focus cycled")
	dispatcher.controls.IndicateFocus(id)
}
