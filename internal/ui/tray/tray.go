package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"overtimer/internal/core/model"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowLauncher func()
	OnLaunch       func(presetID string)
	OnToggleMute   func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app       desktop.App
	presets   []model.TimerPreset
	callbacks Callbacks
	muted     bool
}

// New creates a tray manager and installs its menu.
func New(app desktop.App, presets []model.TimerPreset, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		presets:   presets,
		callbacks: callbacks,
	}
	manager.refreshMenu()
	return manager
}

// SetMuted updates the mute item label.
func (manager *Manager) SetMuted(muted bool) {
	if manager.muted == muted {
		return
	}
	manager.muted = muted
	manager.refreshMenu()
}

// MuteLabel is the mute item's text for the given state.
func MuteLabel(muted bool) string {
	if muted {
		return "Unmute all"
	}
	return "Mute all"
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu())
	}
}

func (manager *Manager) menu() *fyne.Menu {
	launchItems := make([]*fyne.MenuItem, 0, len(manager.presets))
	for _, preset := range manager.presets {
		presetID := preset.ID
		launchItems = append(launchItems, fyne.NewMenuItem(preset.Title, func() {
			if manager.callbacks.OnLaunch != nil {
				manager.callbacks.OnLaunch(presetID)
			}
		}))
	}
	launch := fyne.NewMenuItem("Open timer", nil)
	launch.ChildMenu = fyne.NewMenu("", launchItems...)

	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	return fyne.NewMenu("Overtimer",
		fyne.NewMenuItem("Show launcher", func() {
			if manager.callbacks.OnShowLauncher != nil {
				manager.callbacks.OnShowLauncher()
			}
		}),
		launch,
		fyne.NewMenuItem(MuteLabel(manager.muted), func() {
			if manager.callbacks.OnToggleMute != nil {
				manager.callbacks.OnToggleMute()
			}
		}),
		fyne.NewMenuItemSeparator(),
		quit,
	)
}
