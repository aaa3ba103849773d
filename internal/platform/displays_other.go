//go:build !windows

package platform

import (
	"errors"

	"overtimer/internal/core/model"
)

var errNoEnumeration = errors.New("display enumeration not supported on this platform")

func enumerateDisplays() ([]model.Rect, error) {
	return nil, errNoEnumeration
}
