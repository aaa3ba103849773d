// Package geometry persists per-preset window placement and decides where new
// timers open.
package geometry

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/model"
	"overtimer/internal/core/periodic"
)

// Fallback grid used when no usable saved placement exists.
const (
	columns      = 5
	columnStride = 200
	rowStride    = 150
)

// DefaultDebounce is the quiet window before a placement is written.
const DefaultDebounce = 100 * time.Millisecond

// DefaultSize is used when neither the preset nor the caller supplies one.
var DefaultSize = model.Size{Width: 192, Height: 130}

// Backend reads and writes the whole placement document.
type Backend interface {
	Load() (map[string]model.Bounds, error)
	Save(bounds map[string]model.Bounds) error
}

// Displays enumerates the attached display rectangles.
type Displays interface {
	Displays() ([]model.Rect, error)
}

// DisplaysFunc adapts a function to Displays.
type DisplaysFunc func() ([]model.Rect, error)

// Displays calls fn.
func (fn DisplaysFunc) Displays() ([]model.Rect, error) {
	return fn()
}

// Options tune a Store.
type Options struct {
	Debounce    time.Duration
	DefaultSize model.Size
}

// Store keeps placements in memory and writes them through a debounced backend.
type Store struct {
	backend     Backend
	displays    Displays
	defaultSize model.Size
	debouncer   *periodic.Debouncer

	mu     sync.Mutex
	bounds map[string]model.Bounds
}

// New loads the stored placements. A backend that cannot be read yields an
// empty store.
func New(backend Backend, displays Displays, options Options) *Store {
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if options.DefaultSize.Width <= 0 || options.DefaultSize.Height <= 0 {
		options.DefaultSize = DefaultSize
	}

	loaded, err := backend.Load()
	if err != nil {
		logrus.WithError(err).Warn("could not read saved window placement, starting empty")
	}
	if loaded == nil {
		loaded = make(map[string]model.Bounds)
	}

	return &Store{
		backend:     backend,
		displays:    displays,
		defaultSize: options.DefaultSize,
		debouncer:   periodic.NewDebouncer(options.Debounce),
		bounds:      loaded,
	}
}

// Save schedules a write of bounds for presetID. Bursts from one instance
// coalesce into a single write of the last value.
func (store *Store) Save(instanceID model.InstanceID, presetID string, bounds model.Bounds) {
	store.debouncer.Trigger(string(instanceID), func() {
		if err := store.commit(presetID, bounds); err != nil {
			logrus.WithError(err).WithField("preset", presetID).Error("failed to persist window placement")
		}
	})
}

// Cancel drops a pending write for an instance whose surface went away.
func (store *Store) Cancel(instanceID model.InstanceID) {
	store.debouncer.Cancel(string(instanceID))
}

// Pending returns the number of instances with a write waiting.
func (store *Store) Pending() int {
	return store.debouncer.Pending()
}

// Flush writes every pending placement immediately.
func (store *Store) Flush() {
	store.debouncer.Flush()
}

// Lookup returns the stored bounds for presetID without display checks.
func (store *Store) Lookup(presetID string) (model.Bounds, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	bounds, ok := store.bounds[presetID]
	return bounds, ok
}

// Resolve returns the saved bounds for presetID when their top-left corner is
// on an attached display, otherwise the grid slot for ordinal with presetSize
// (or the store default when presetSize is nil).
func (store *Store) Resolve(presetID string, presetSize *model.Size, ordinal int) model.Bounds {
	if saved, ok := store.Lookup(presetID); ok {
		err := store.checkVisible(saved)
		if err == nil {
			return saved
		}
		logrus.WithError(err).WithField("preset", presetID).Warn("using default placement")
	}

	size := store.defaultSize
	if presetSize != nil && presetSize.Width > 0 && presetSize.Height > 0 {
		size = *presetSize
	}
	return model.NewBounds(FallbackPosition(ordinal), size)
}

// Place implements registry.Placer.
func (store *Store) Place(preset model.TimerPreset, ordinal int) model.Bounds {
	return store.Resolve(preset.ID, preset.InitialSize, ordinal)
}

// FallbackPosition lays timers out on a five-column grid.
func FallbackPosition(ordinal int) model.Position {
	if ordinal < 0 {
		ordinal = 0
	}
	return model.Position{
		X: (ordinal % columns) * columnStride,
		Y: (ordinal / columns) * rowStride,
	}
}

func (store *Store) checkVisible(bounds model.Bounds) error {
	rects, err := store.displays.Displays()
	if err != nil {
		return fmt.Errorf("%w: enumerate displays: %v", model.ErrGeometryOffscreen, err)
	}
	origin := bounds.Position()
	for _, rect := range rects {
		if rect.Contains(origin) {
			return nil
		}
	}
	return fmt.Errorf("%w: origin %d,%d", model.ErrGeometryOffscreen, origin.X, origin.Y)
}

func (store *Store) commit(presetID string, bounds model.Bounds) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if current, ok := store.bounds[presetID]; ok && current == bounds {
		return nil
	}

	next := make(map[string]model.Bounds, len(store.bounds)+1)
	for key, value := range store.bounds {
		next[key] = value
	}
	next[presetID] = bounds

	if err := store.backend.Save(next); err != nil {
		return err
	}
	store.bounds = next
	logrus.WithFields(logrus.Fields{"preset": presetID, "bounds": bounds}).Debug("window placement saved")
	return nil
}
