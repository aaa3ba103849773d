//go:build windows

package platform

import (
	"fmt"
	"syscall"

	"overtimer/internal/core/model"
)

type nativeRect struct {
	left, top, right, bottom int32
}

var (
	user32DLL               = syscall.NewLazyDLL("user32.dll")
	procEnumDisplayMonitors = user32DLL.NewProc("EnumDisplayMonitors")
)

func enumerateDisplays() ([]model.Rect, error) {
	var rects []model.Rect
	callback := syscall.NewCallback(func(monitor, hdc uintptr, bounds *nativeRect, data uintptr) uintptr {
		rects = append(rects, model.Rect{
			X:      int(bounds.left),
			Y:      int(bounds.top),
			Width:  int(bounds.right - bounds.left),
			Height: int(bounds.bottom - bounds.top),
		})
		return 1
	})

	result, _, err := procEnumDisplayMonitors.Call(0, 0, callback, 0)
	if result == 0 {
		return nil, fmt.Errorf("enum display monitors: %w", err)
	}
	return rects, nil
}
