// Package lifecycle maps timer instances to rendering surfaces and keeps the
// periodic work tied to those surfaces alive exactly as long as they are.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/clock"
	"overtimer/internal/core/focus"
	"overtimer/internal/core/loop"
	"overtimer/internal/core/model"
	"overtimer/internal/core/periodic"
	"overtimer/internal/core/registry"
	"overtimer/internal/core/syncproto"
)

// DefaultKeepOnTopInterval is how often topmost is re-asserted.
const DefaultKeepOnTopInterval = time.Second

// Surface is one rendered timer. Its methods are called on the event loop
// and must hand UI work off rather than block.
type Surface interface {
	syncproto.Peer
	Show()
	Focus()
	KeepOnTop()
	Close()
}

// Host is how a surface reports back. It may be called from any goroutine.
// Request hands the response to reply when reply is non-nil; for awaited
// kinds that happens later, on another goroutine.
type Host interface {
	Ready(id model.InstanceID)
	Destroyed(id model.InstanceID)
	Request(request syncproto.Request, reply func(syncproto.Response))
}

// Factory builds surfaces. A returned error or a panic counts as the
// platform refusing the surface.
type Factory interface {
	Create(instance model.TimerInstance, host Host) (Surface, error)
}

// Placements receives geometry for persistence.
type Placements interface {
	Save(instanceID model.InstanceID, presetID string, bounds model.Bounds)
	Cancel(instanceID model.InstanceID)
}

// Suspender is periodic work that stops when the last surface goes.
type Suspender interface {
	Stop()
}

// Config wires a Manager.
type Config struct {
	Factory           Factory
	Host              Host
	Registry          *registry.Registry
	Hub               *syncproto.Hub
	Placements        Placements
	Focus             *focus.Router
	Scheduler         Suspender
	Poster            loop.Poster
	Clock             clock.Clock
	KeepOnTopInterval time.Duration
}

// Manager owns the surface map. Every method must run on the event loop.
type Manager struct {
	config    Config
	surfaces  map[model.InstanceID]Surface
	keepOnTop *periodic.Task
}

// New creates a manager with no surfaces.
func New(config Config) *Manager {
	if config.KeepOnTopInterval <= 0 {
		config.KeepOnTopInterval = DefaultKeepOnTopInterval
	}
	manager := &Manager{
		config:   config,
		surfaces: make(map[model.InstanceID]Surface),
	}
	manager.keepOnTop = periodic.New(periodic.Config{
		Name:     "keep-on-top",
		Interval: config.KeepOnTopInterval,
		Clock:    config.Clock,
		Poster:   config.Poster,
	}, manager.enforceTopmost)
	return manager
}

// Materialize creates the surface for id, or focuses it if it already exists.
// When the platform refuses, the registry entry is rolled back.
func (manager *Manager) Materialize(id model.InstanceID) error {
	if existing, ok := manager.surfaces[id]; ok {
		logrus.WithField("instance", id).Debug("surface exists, focusing")
		existing.Focus()
		return nil
	}

	instance, ok := manager.config.Registry.Get(id)
	if !ok {
		return fmt.Errorf("materialize %s: %w", id, model.ErrUnknownInstance)
	}

	surface, err := manager.create(instance)
	if err != nil {
		manager.config.Registry.Remove(id)
		return fmt.Errorf("%w: %s: %v", model.ErrSurfaceCreation, id, err)
	}

	manager.surfaces[id] = surface
	manager.config.Hub.Attach(id, surface)
	logrus.WithFields(logrus.Fields{"instance": id, "preset": instance.Preset.ID}).Info("timer surface created")
	return nil
}

func (manager *Manager) create(instance model.TimerInstance) (surface Surface, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			surface, err = nil, fmt.Errorf("panic: %v", recovered)
		}
	}()
	surface, err = manager.config.Factory.Create(instance, manager.config.Host)
	if err == nil && surface == nil {
		err = fmt.Errorf("factory returned no surface")
	}
	return surface, err
}

// Ready shows the surface and makes sure topmost enforcement is running.
func (manager *Manager) Ready(id model.InstanceID) {
	surface, ok := manager.surfaces[id]
	if !ok {
		return
	}
	surface.Show()
	if manager.keepOnTop.Start() {
		logrus.Debug("keep-on-top loop started")
	}
}

// Destroyed forgets a surface that is gone. The instance is removed from the
// registry and the launcher told. Closing the last surface stops all
// periodic work. Repeated calls are no-ops.
func (manager *Manager) Destroyed(id model.InstanceID) {
	_, hadSurface := manager.surfaces[id]
	delete(manager.surfaces, id)
	manager.config.Hub.Detach(id)
	removed := manager.config.Registry.Remove(id)
	if !hadSurface && !removed {
		return
	}

	if manager.config.Placements != nil {
		manager.config.Placements.Cancel(id)
	}
	manager.config.Focus.Forget(id, len(manager.surfaces))
	manager.config.Hub.ToLauncher(syncproto.TimerClosedPush(id))
	logrus.WithField("instance", id).Info("timer closed")

	if len(manager.surfaces) == 0 {
		manager.stopPeriodic()
	}
}

// Close destroys a surface on request.
func (manager *Manager) Close(id model.InstanceID) {
	if surface, ok := manager.surfaces[id]; ok {
		surface.Close()
	}
	manager.Destroyed(id)
}

// CloseAll closes every surface.
func (manager *Manager) CloseAll() {
	for _, id := range manager.config.Registry.IDs() {
		manager.Close(id)
	}
	manager.stopPeriodic()
}

// Focus raises an existing surface. It reports false for unknown ids.
func (manager *Manager) Focus(id model.InstanceID) bool {
	surface, ok := manager.surfaces[id]
	if !ok {
		return false
	}
	surface.Focus()
	return true
}

// GeometryChanged records a move or resize reported by the surface itself.
// The surface is not notified back; the bounds go to persistence.
func (manager *Manager) GeometryChanged(id model.InstanceID, position *model.Position, size *model.Size) {
	if position != nil {
		manager.config.Registry.UpdatePosition(id, *position)
	}
	if size != nil {
		manager.config.Registry.UpdateSize(id, *size)
	}
	instance, ok := manager.config.Registry.Get(id)
	if !ok || manager.config.Placements == nil {
		return
	}
	manager.config.Placements.Save(id, instance.Preset.ID, model.NewBounds(instance.Position, instance.Size))
}

// Count returns the number of live surfaces.
func (manager *Manager) Count() int {
	return len(manager.surfaces)
}

// Has reports whether id has a surface.
func (manager *Manager) Has(id model.InstanceID) bool {
	_, ok := manager.surfaces[id]
	return ok
}

// KeepOnTopActive reports whether topmost enforcement is scheduled.
func (manager *Manager) KeepOnTopActive() bool {
	return manager.keepOnTop.Running()
}

func (manager *Manager) enforceTopmost(time.Time) {
	for _, surface := range manager.surfaces {
		surface.KeepOnTop()
	}
}

func (manager *Manager) stopPeriodic() {
	if manager.keepOnTop.Stop() {
		logrus.Debug("keep-on-top loop stopped")
	}
	if manager.config.Scheduler != nil {
		manager.config.Scheduler.Stop()
	}
}
