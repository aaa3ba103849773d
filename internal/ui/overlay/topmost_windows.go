//go:build windows

package overlay

import (
	"syscall"
	"unsafe"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"

	"overtimer/internal/core/model"
)

const (
	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010
)

// HWND_TOPMOST is (HWND)-1.
const hwndTopmost = ^uintptr(0)

var (
	user32DLL         = syscall.NewLazyDLL("user32.dll")
	procSetWindowPos  = user32DLL.NewProc("SetWindowPos")
	procGetWindowRect = user32DLL.NewProc("GetWindowRect")
)

type windowRect struct {
	Left, Top, Right, Bottom int32
}

// raiseTopmost puts the window back above normal windows without activating
// it and returns where the window currently is.
func raiseTopmost(window fyne.Window) (model.Position, bool) {
	var (
		position model.Position
		ok       bool
	)
	withHWND(window, func(hwnd uintptr) {
		procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize|swpNoActivate)

		var rect windowRect
		result, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))
		if result == 0 {
			return
		}
		position = model.Position{X: int(rect.Left), Y: int(rect.Top)}
		ok = true
	})
	return position, ok
}

// placeNative moves the window to position and makes it topmost.
func placeNative(window fyne.Window, position model.Position) {
	withHWND(window, func(hwnd uintptr) {
		procSetWindowPos.Call(hwnd, hwndTopmost,
			int32ToUintptr(int32(position.X)), int32ToUintptr(int32(position.Y)),
			0, 0, swpNoSize|swpNoActivate)
	})
}

func withHWND(window fyne.Window, fn func(hwnd uintptr)) {
	nativeWindow, ok := window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		var hwnd uintptr
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		default:
			return
		}
		if hwnd == 0 {
			return
		}
		fn(hwnd)
	})
}

func int32ToUintptr(value int32) uintptr {
	return uintptr(uint32(value))
}
