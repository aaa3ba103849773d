//go:build linux

package hotkeys

import (
	xhotkey "golang.design/x/hotkey"

	corehotkey "overtimer/internal/core/hotkey"
)

var modifierTable = map[corehotkey.Modifier]xhotkey.Modifier{
	corehotkey.CommandOrControl: xhotkey.ModCtrl,
	corehotkey.Control:          xhotkey.ModCtrl,
	corehotkey.Shift:            xhotkey.ModShift,
	corehotkey.Alt:              xhotkey.Mod1,
	corehotkey.Command:          xhotkey.Mod4,
	corehotkey.Super:            xhotkey.Mod4,
}

// X11 keysyms.
var platformKeys = map[string]xhotkey.Key{
	"Home":     0xff50,
	"End":      0xff57,
	"PageUp":   0xff55,
	"PageDown": 0xff56,
}
