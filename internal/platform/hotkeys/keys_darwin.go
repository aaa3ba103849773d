//go:build darwin

package hotkeys

import (
	xhotkey "golang.design/x/hotkey"

	corehotkey "overtimer/internal/core/hotkey"
)

var modifierTable = map[corehotkey.Modifier]xhotkey.Modifier{
	corehotkey.CommandOrControl: xhotkey.ModCmd,
	corehotkey.Command:          xhotkey.ModCmd,
	corehotkey.Super:            xhotkey.ModCmd,
	corehotkey.Control:          xhotkey.ModCtrl,
	corehotkey.Shift:            xhotkey.ModShift,
	corehotkey.Alt:              xhotkey.ModOption,
}

// Carbon virtual key codes.
var platformKeys = map[string]xhotkey.Key{
	"Home":     0x73,
	"PageUp":   0x74,
	"End":      0x77,
	"PageDown": 0x79,
}
