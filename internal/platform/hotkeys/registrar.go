// Package hotkeys installs OS-level global hotkeys.
package hotkeys

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	xhotkey "golang.design/x/hotkey"

	corehotkey "overtimer/internal/core/hotkey"
)

// Registrar binds accelerators with golang.design/x/hotkey.
type Registrar struct{}

// NewRegistrar returns a registrar for the current platform.
func NewRegistrar() *Registrar {
	return &Registrar{}
}

// Register grabs the chord system-wide. fn runs on a dedicated goroutine for
// every key-down until the returned unregister is called.
func (registrar *Registrar) Register(accelerator corehotkey.Accelerator, fn func()) (func(), error) {
	modifiers, err := nativeModifiers(accelerator.Modifiers)
	if err != nil {
		return nil, err
	}
	key, err := nativeKey(accelerator.Key)
	if err != nil {
		return nil, err
	}

	binding := xhotkey.New(modifiers, key)
	if err := binding.Register(); err != nil {
		return nil, fmt.Errorf("register %s: %w", accelerator, err)
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-binding.Keydown():
				logrus.WithField("hotkey", accelerator.String()).Debug("hotkey pressed")
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			if err := binding.Unregister(); err != nil {
				logrus.WithError(err).WithField("hotkey", accelerator.String()).Debug("hotkey unregister failed")
			}
		})
	}, nil
}

func nativeModifiers(modifiers []corehotkey.Modifier) ([]xhotkey.Modifier, error) {
	native := make([]xhotkey.Modifier, 0, len(modifiers))
	for _, modifier := range modifiers {
		mapped, ok := modifierTable[modifier]
		if !ok {
			return nil, fmt.Errorf("modifier %s not supported on this platform", modifier)
		}
		native = append(native, mapped)
	}
	return native, nil
}

func nativeKey(name string) (xhotkey.Key, error) {
	if key, ok := keyTable[name]; ok {
		return key, nil
	}
	if key, ok := platformKeys[name]; ok {
		return key, nil
	}
	return 0, fmt.Errorf("key %s not supported on this platform", name)
}

var keyTable = map[string]xhotkey.Key{
	"A": xhotkey.KeyA, "B": xhotkey.KeyB, "C": xhotkey.KeyC, "D": xhotkey.KeyD,
	"E": xhotkey.KeyE, "F": xhotkey.KeyF, "G": xhotkey.KeyG, "H": xhotkey.KeyH,
	"I": xhotkey.KeyI, "J": xhotkey.KeyJ, "K": xhotkey.KeyK, "L": xhotkey.KeyL,
	"M": xhotkey.KeyM, "N": xhotkey.KeyN, "O": xhotkey.KeyO, "P": xhotkey.KeyP,
	"Q": xhotkey.KeyQ, "R": xhotkey.KeyR, "S": xhotkey.KeyS, "T": xhotkey.KeyT,
	"U": xhotkey.KeyU, "V": xhotkey.KeyV, "W": xhotkey.KeyW, "X": xhotkey.KeyX,
	"Y": xhotkey.KeyY, "Z": xhotkey.KeyZ,
	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
	"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
	"8": xhotkey.Key8, "9": xhotkey.Key9,
	"F1": xhotkey.KeyF1, "F2": xhotkey.KeyF2, "F3": xhotkey.KeyF3, "F4": xhotkey.KeyF4,
	"F5": xhotkey.KeyF5, "F6": xhotkey.KeyF6, "F7": xhotkey.KeyF7, "F8": xhotkey.KeyF8,
	"F9": xhotkey.KeyF9, "F10": xhotkey.KeyF10, "F11": xhotkey.KeyF11, "F12": xhotkey.KeyF12,
	"Up":     xhotkey.KeyUp,
	"Down":   xhotkey.KeyDown,
	"Left":   xhotkey.KeyLeft,
	"Right":  xhotkey.KeyRight,
	"Space":  xhotkey.KeySpace,
	"Tab":    xhotkey.KeyTab,
	"Return": xhotkey.KeyReturn,
	"Escape": xhotkey.KeyEscape,
	"Delete": xhotkey.KeyDelete,
}
