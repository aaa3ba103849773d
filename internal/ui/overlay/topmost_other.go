//go:build !windows

package overlay

import (
	"fyne.io/fyne/v2"

	"overtimer/internal/core/model"
)

// The window manager decides stacking and placement here.
func raiseTopmost(fyne.Window) (model.Position, bool) {
	return model.Position{}, false
}

func placeNative(fyne.Window, model.Position) {}
