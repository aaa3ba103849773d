package platform

import (
	"github.com/sirupsen/logrus"

	"overtimer/internal/core/model"
)

// Displays enumerates monitors, falling back to a configured display when the
// platform cannot report any.
type Displays struct {
	fallback  model.Rect
	enumerate func() ([]model.Rect, error)
}

// NewDisplays uses fallback when enumeration fails or finds nothing.
func NewDisplays(fallback model.Rect) *Displays {
	return &Displays{fallback: fallback, enumerate: enumerateDisplays}
}

// Displays returns the attached display rectangles in screen coordinates.
func (displays *Displays) Displays() ([]model.Rect, error) {
	rects, err := displays.enumerate()
	if err != nil {
		logrus.WithError(err).Debug("display enumeration failed, using configured display")
		return []model.Rect{displays.fallback}, nil
	}
	if len(rects) == 0 {
		return []model.Rect{displays.fallback}, nil
	}
	return rects, nil
}
