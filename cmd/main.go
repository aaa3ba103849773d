package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"overtimer/internal/config"
	"overtimer/internal/control"
	"overtimer/internal/core/engine"
	"overtimer/internal/core/geometry"
	"overtimer/internal/core/hotkey"
	"overtimer/internal/core/model"
	"overtimer/internal/core/presets"
	"overtimer/internal/platform"
	"overtimer/internal/platform/hotkeys"
	"overtimer/internal/storage"
	"overtimer/internal/ui/launcher"
	"overtimer/internal/ui/overlay"
	"overtimer/internal/ui/tray"
	"overtimer/resources"
)

const shutdownTimeout = 3 * time.Second

//nolint:gochecknoglobals // cobra flag bindings
var (
	configPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:           "overtimer",
		Short:         "Always-on-top countdown timers driven by global hotkeys.",
		Long:          "Overtimer runs a launcher and any number of small borderless countdown timers that float above other windows. Timers are opened, started, paused, reset and cycled with global hotkeys, so the application you are using keeps keyboard focus.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runApp,
	}
)

//nolint:gochecknoinits // cobra command wiring
func init() {
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (defaults to the user config directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(controlCmd)
	rootCmd.AddCommand(presetsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logrus.Fatal(err)
	}
}

func loadSettings() (config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return settings, err
	}
	logrus.SetLevel(settings.LogLevel())
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return settings, nil
}

func runApp(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	guard, err := platform.AcquireSingleInstance(config.AppName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logrus.Info("overtimer is already running; use `overtimer launch <preset>` to open a timer")
		return nil
	}
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.overtimer.app")
	fyneApp.SetIcon(resources.MustIcon(resources.AppIcon))

	store := geometry.New(
		storage.NewBoundsFile(settings.Geometry.StateFile),
		platform.NewDisplays(settings.FallbackDisplay()),
		geometry.Options{Debounce: settings.Geometry.Debounce, DefaultSize: settings.DefaultSize()},
	)
	core := engine.New(engine.Options{
		Factory: overlay.NewFactory(fyneApp, overlay.Options{
			FocusIndicator: settings.Focus.Indicator,
			PushBuffer:     settings.PushBuffer,
		}),
		Geometry:          store,
		TickInterval:      settings.TickInterval,
		KeepOnTopInterval: settings.KeepOnTopInterval,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		if err := core.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("timer core stopped")
		}
	}()
	go func() {
		if err := control.Serve(ctx, guard.Listener(), core); err != nil {
			logrus.WithError(err).Warn("control channel stopped")
		}
	}()

	launcherWindow := launcher.New(fyneApp, presets.All(), core, settings.PushBuffer)
	launcherWindow.SetOnClosed(fyneApp.Quit)
	core.AttachLauncher(launcherWindow.Peer())

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager := tray.New(desktopApp, presets.All(), tray.Callbacks{
			OnShowLauncher: launcherWindow.Show,
			OnLaunch:       launcherWindow.Launch,
			OnToggleMute:   core.ToggleGlobalMute,
			OnQuit:         fyneApp.Quit,
		})
		launcherWindow.SetOnAudioChanged(func(audio model.GlobalAudioState) {
			trayManager.SetMuted(audio.IsMuted)
		})
		desktopApp.SetSystemTrayIcon(fyneApp.Icon())
	} else {
		logrus.Debug("system tray unsupported on this platform")
	}

	var dispatcher *hotkey.Dispatcher
	fyneApp.Lifecycle().SetOnStarted(func() {
		bound, err := core.BindHotkeys(hotkeys.NewRegistrar(), settings.Bindings())
		dispatcher = bound
		if err != nil {
			logrus.WithError(err).Warn("some hotkeys are unavailable")
		}
	})
	fyneApp.Lifecycle().SetOnStopped(func() {
		if dispatcher != nil {
			dispatcher.Close()
		}
	})

	launcherWindow.Show()
	fyneApp.Run()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := core.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown incomplete")
	}
	logrus.Info("overtimer stopped")
	return nil
}
