//go:build windows

package hotkeys

import (
	xhotkey "golang.design/x/hotkey"

	corehotkey "overtimer/internal/core/hotkey"
)

var modifierTable = map[corehotkey.Modifier]xhotkey.Modifier{
	corehotkey.CommandOrControl: xhotkey.ModCtrl,
	corehotkey.Control:          xhotkey.ModCtrl,
	corehotkey.Shift:            xhotkey.ModShift,
	corehotkey.Alt:              xhotkey.ModAlt,
	corehotkey.Command:          xhotkey.ModWin,
	corehotkey.Super:            xhotkey.ModWin,
}

// Virtual-key codes.
var platformKeys = map[string]xhotkey.Key{
	"PageUp":   0x21,
	"PageDown": 0x22,
	"End":      0x23,
	"Home":     0x24,
}
