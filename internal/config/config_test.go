package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtimer/internal/core/hotkey"
	"overtimer/internal/core/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	settings := DefaultSettings()
	assert.Equal(t, 100*time.Millisecond, settings.TickInterval)
	assert.Equal(t, time.Second, settings.KeepOnTopInterval)
	assert.Equal(t, 750*time.Millisecond, settings.Focus.Indicator)
	assert.Equal(t, model.Size{Width: 192, Height: 130}, settings.DefaultSize())
	assert.Equal(t, "CommandOrControl+Shift+B", settings.Hotkeys.Launch["backflow"])
	assert.Len(t, settings.Bindings(), len(hotkey.DefaultBindings()))
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
tick_interval: 50ms
geometry:
  debounce: 250ms
  state_file: /tmp/overtimer/bounds.yaml
timer:
  default_width: 300
log:
  level: debug
hotkeys:
  launch:
    fire: Alt+F
  reset: ""
`)
	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, settings.TickInterval)
	assert.Equal(t, time.Second, settings.KeepOnTopInterval)
	assert.Equal(t, 250*time.Millisecond, settings.Geometry.Debounce)
	assert.Equal(t, "/tmp/overtimer/bounds.yaml", settings.Geometry.StateFile)
	assert.Equal(t, model.Size{Width: 300, Height: 130}, settings.DefaultSize())
	assert.Equal(t, logrus.DebugLevel, settings.LogLevel())

	assert.Equal(t, "Alt+F", settings.Hotkeys.Launch["fire"])
	assert.Equal(t, "CommandOrControl+Shift+L", settings.Hotkeys.Launch["lightning"])
	for _, binding := range settings.Bindings() {
		assert.NotEqual(t, hotkey.ActionReset, binding.Action)
	}
	assert.Len(t, settings.Bindings(), len(hotkey.DefaultBindings())-1)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OVERTIMER_KEEP_ON_TOP_INTERVAL", "3s")
	t.Setenv("OVERTIMER_DISPLAY_WIDTH", "2560")

	settings, err := Load(writeConfig(t, "push_buffer: 16\n"))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, settings.KeepOnTopInterval)
	assert.Equal(t, model.Rect{Width: 2560, Height: 1080}, settings.FallbackDisplay())
	assert.Equal(t, 16, settings.PushBuffer)
}

func TestConfigPathFromEnvironment(t *testing.T) {
	t.Setenv("OVERTIMER_CONFIG", writeConfig(t, "push_buffer: 8\n"))
	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, settings.PushBuffer)
}

func TestInvalidValuesRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "tick_interval: 0s\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "log:\n  level: chatty\n"))
	require.Error(t, err)
}

func TestExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
