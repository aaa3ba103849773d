// Package config loads user settings from config.yaml and OVERTIMER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"overtimer/internal/core/hotkey"
	"overtimer/internal/core/model"
	"overtimer/internal/storage"
	"overtimer/internal/validate"
)

// AppName names the per-user config directory.
const AppName = "Overtimer"

// EnvPrefix prefixes environment overrides, e.g. OVERTIMER_TICK_INTERVAL.
const EnvPrefix = "OVERTIMER"

// Settings holds every tunable value.
type Settings struct {
	TickInterval      time.Duration    `mapstructure:"tick_interval" validate:"gt=0"`
	KeepOnTopInterval time.Duration    `mapstructure:"keep_on_top_interval" validate:"gt=0"`
	PushBuffer        int              `mapstructure:"push_buffer" validate:"gt=0"`
	Geometry          GeometrySettings `mapstructure:"geometry"`
	Focus             FocusSettings    `mapstructure:"focus"`
	Timer             TimerSettings    `mapstructure:"timer"`
	Display           DisplaySettings  `mapstructure:"display"`
	Log               LogSettings      `mapstructure:"log"`
	Hotkeys           HotkeySettings   `mapstructure:"hotkeys"`
}

// GeometrySettings controls placement persistence.
type GeometrySettings struct {
	Debounce  time.Duration `mapstructure:"debounce" validate:"gt=0"`
	StateFile string        `mapstructure:"state_file" validate:"required"`
}

// FocusSettings controls the logical-focus indicator.
type FocusSettings struct {
	Indicator time.Duration `mapstructure:"indicator" validate:"gt=0"`
}

// TimerSettings holds the size used when a preset declares none.
type TimerSettings struct {
	DefaultWidth  int `mapstructure:"default_width" validate:"gt=0"`
	DefaultHeight int `mapstructure:"default_height" validate:"gt=0"`
}

// DisplaySettings is the display assumed when monitors cannot be enumerated.
type DisplaySettings struct {
	Width  int `mapstructure:"width" validate:"gt=0"`
	Height int `mapstructure:"height" validate:"gt=0"`
}

// LogSettings holds the default log level.
type LogSettings struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
}

// HotkeySettings holds accelerators. An empty accelerator disables that binding.
type HotkeySettings struct {
	Launch    map[string]string `mapstructure:"launch"`
	Start     string            `mapstructure:"start"`
	Pause     string            `mapstructure:"pause"`
	Reset     string            `mapstructure:"reset"`
	CycleNext string            `mapstructure:"cycle_next"`
	CyclePrev string            `mapstructure:"cycle_prev"`
}

// DefaultSettings returns default settings for Overtimer.
func DefaultSettings() Settings {
	settings := Settings{
		TickInterval:      100 * time.Millisecond,
		KeepOnTopInterval: time.Second,
		PushBuffer:        64,
		Geometry: GeometrySettings{
			Debounce: 100 * time.Millisecond,
		},
		Focus:   FocusSettings{Indicator: 750 * time.Millisecond},
		Timer:   TimerSettings{DefaultWidth: 192, DefaultHeight: 130},
		Display: DisplaySettings{Width: 1920, Height: 1080},
		Log:     LogSettings{Level: "info"},
		Hotkeys: HotkeySettings{Launch: map[string]string{}},
	}
	if path, err := storage.DefaultBoundsPath(AppName); err == nil {
		settings.Geometry.StateFile = path
	} else {
		settings.Geometry.StateFile = filepath.Join(os.TempDir(), AppName, storage.BoundsFileName)
	}
	for _, binding := range hotkey.DefaultBindings() {
		switch binding.Action {
		case hotkey.ActionLaunch:
			settings.Hotkeys.Launch[binding.PresetID] = binding.Accelerator
		case hotkey.ActionStart:
			settings.Hotkeys.Start = binding.Accelerator
		case hotkey.ActionPause:
			settings.Hotkeys.Pause = binding.Accelerator
		case hotkey.ActionReset:
			settings.Hotkeys.Reset = binding.Accelerator
		case hotkey.ActionCycleNext:
			settings.Hotkeys.CycleNext = binding.Accelerator
		case hotkey.ActionCyclePrev:
			settings.Hotkeys.CyclePrev = binding.Accelerator
		}
	}
	return settings
}

// Load reads settings. path overrides the config file location; when empty,
// OVERTIMER_CONFIG and then <user config dir>/Overtimer/config.yaml are
// tried. A missing default file is not an error.
func Load(path string) (Settings, error) {
	defaults := DefaultSettings()
	v := viper.New()
	setDefaults(v, defaults)

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else if configDir, err := storage.ConfigDir(AppName); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return defaults, fmt.Errorf("read config: %w", err)
		}
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Debug("config loaded")
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return defaults, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(settings); err != nil {
		return defaults, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}

func setDefaults(v *viper.Viper, defaults Settings) {
	v.SetDefault("tick_interval", defaults.TickInterval)
	v.SetDefault("keep_on_top_interval", defaults.KeepOnTopInterval)
	v.SetDefault("push_buffer", defaults.PushBuffer)
	v.SetDefault("geometry.debounce", defaults.Geometry.Debounce)
	v.SetDefault("geometry.state_file", defaults.Geometry.StateFile)
	v.SetDefault("focus.indicator", defaults.Focus.Indicator)
	v.SetDefault("timer.default_width", defaults.Timer.DefaultWidth)
	v.SetDefault("timer.default_height", defaults.Timer.DefaultHeight)
	v.SetDefault("display.width", defaults.Display.Width)
	v.SetDefault("display.height", defaults.Display.Height)
	v.SetDefault("log.level", defaults.Log.Level)
	for presetID, accelerator := range defaults.Hotkeys.Launch {
		v.SetDefault("hotkeys.launch."+presetID, accelerator)
	}
	v.SetDefault("hotkeys.start", defaults.Hotkeys.Start)
	v.SetDefault("hotkeys.pause", defaults.Hotkeys.Pause)
	v.SetDefault("hotkeys.reset", defaults.Hotkeys.Reset)
	v.SetDefault("hotkeys.cycle_next", defaults.Hotkeys.CycleNext)
	v.SetDefault("hotkeys.cycle_prev", defaults.Hotkeys.CyclePrev)
}

// Bindings converts the hotkey settings into dispatcher bindings, skipping
// disabled entries.
func (settings Settings) Bindings() []hotkey.Binding {
	var bindings []hotkey.Binding
	for _, binding := range hotkey.DefaultBindings() {
		if binding.Action == hotkey.ActionLaunch {
			binding.Accelerator = settings.Hotkeys.Launch[binding.PresetID]
		} else {
			binding.Accelerator = settings.Hotkeys.accelerator(binding.Action)
		}
		if binding.Accelerator != "" {
			bindings = append(bindings, binding)
		}
	}
	return bindings
}

func (hotkeys HotkeySettings) accelerator(action hotkey.Action) string {
	switch action {
	case hotkey.ActionStart:
		return hotkeys.Start
	case hotkey.ActionPause:
		return hotkeys.Pause
	case hotkey.ActionReset:
		return hotkeys.Reset
	case hotkey.ActionCycleNext:
		return hotkeys.CycleNext
	case hotkey.ActionCyclePrev:
		return hotkeys.CyclePrev
	default:
		return ""
	}
}

// DefaultSize is the timer size for presets that declare none.
func (settings Settings) DefaultSize() model.Size {
	return model.Size{Width: settings.Timer.DefaultWidth, Height: settings.Timer.DefaultHeight}
}

// FallbackDisplay is the display used when enumeration fails.
func (settings Settings) FallbackDisplay() model.Rect {
	return model.Rect{Width: settings.Display.Width, Height: settings.Display.Height}
}

// LogLevel parses the configured level, defaulting to info.
func (settings Settings) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(settings.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// StateDir returns the directory holding the placement document.
func (settings Settings) StateDir() string {
	return filepath.Dir(settings.Geometry.StateFile)
}
