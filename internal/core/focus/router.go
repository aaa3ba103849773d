// Package focus tracks the timer the user last interacted with. Hotkeys act on
// this logical focus, never on the window the OS considers active.
package focus

import "overtimer/internal/core/model"

// Direction selects which way Cycle moves.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (direction Direction) String() string {
	if direction == Prev {
		return "prev"
	}
	return "next"
}

// Router is the unset/focused state machine. It is owned by the event loop.
type Router struct {
	focused model.InstanceID
	set     bool
}

// Current returns the focused instance, if any.
func (router *Router) Current() (model.InstanceID, bool) {
	return router.focused, router.set
}

// Notify records an explicit focus report from a surface.
func (router *Router) Notify(id model.InstanceID) {
	router.focused, router.set = id, true
}

// Cycle moves focus through open in the given direction, wrapping at both
// ends. From unset, or from an instance no longer open, it lands on the first
// entry. It reports false when nothing is open.
func (router *Router) Cycle(open []model.InstanceID, direction Direction) (model.InstanceID, bool) {
	count := len(open)
	if count == 0 {
		router.Clear()
		return "", false
	}

	current := -1
	if router.set {
		current = indexOf(open, router.focused)
	}

	next := 0
	if current >= 0 {
		switch direction {
		case Prev:
			next = (current - 1 + count) % count
		default:
			next = (current + 1) % count
		}
	}

	router.Notify(open[next])
	return open[next], true
}

// Forget handles a closed instance. Focus becomes unset when the focused
// instance closed or nothing is left open.
func (router *Router) Forget(id model.InstanceID, remaining int) {
	if remaining == 0 || (router.set && router.focused == id) {
		router.Clear()
	}
}

// Clear returns to the unset state.
func (router *Router) Clear() {
	router.focused, router.set = "", false
}

func indexOf(ids []model.InstanceID, id model.InstanceID) int {
	for index, candidate := range ids {
		if candidate == id {
			return index
		}
	}
	return -1
}
