// Package overlay renders timer instances as small borderless fyne windows.
package overlay

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"overtimer/internal/core/lifecycle"
	"overtimer/internal/core/model"
	"overtimer/internal/core/syncproto"
)

// DefaultFocusIndicator is how long the logical-focus ring stays visible.
const DefaultFocusIndicator = 750 * time.Millisecond

const pulsePeriod = 600 * time.Millisecond

// Player voices a cue. Decoding and output are outside the timer core.
type Player interface {
	Play(cue model.Cue, volume float64)
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(cue model.Cue, volume float64)

// Play calls fn.
func (fn PlayerFunc) Play(cue model.Cue, volume float64) {
	fn(cue, volume)
}

// LogPlayer records cues instead of playing them.
var LogPlayer = PlayerFunc(func(cue model.Cue, volume float64) {
	logrus.WithFields(logrus.Fields{
		"instance": cue.InstanceID,
		"cue":      cue.Kind,
		"second":   cue.Second,
		"sound":    cue.Sound,
		"volume":   volume,
	}).Info("cue")
})

// Options tune every overlay surface.
type Options struct {
	FocusIndicator time.Duration
	PushBuffer     int
	Player         Player
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Window is one timer surface. Everything except Deliver and the
// lifecycle.Surface methods runs on the fyne thread.
type Window struct {
	id      model.InstanceID
	host    lifecycle.Host
	window  fyne.Window
	mailbox *syncproto.Mailbox
	options Options

	background *canvas.Rectangle
	border     *canvas.Rectangle
	indicator  *canvas.Rectangle
	titleLabel *canvas.Text
	clockLabel *canvas.Text
	runButton  *widget.Button
	modeButton *widget.Button
	muteButton *widget.Button

	pulse      *fyne.Animation
	state      model.TimerInstance
	audio      model.GlobalAudioState
	focusFlash uint64
	size       model.Size
	position   model.Position
	placed     bool
}

func newWindow(app fyne.App, instance model.TimerInstance, host lifecycle.Host, options Options) *Window {
	window := app.NewWindow(instance.Preset.Title)
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	overlay := &Window{
		id:       instance.InstanceID,
		host:     host,
		window:   window,
		options:  options,
		state:    instance,
		audio:    model.DefaultGlobalAudio(),
		size:     instance.Size,
		position: instance.Position,
	}

	overlay.background = canvas.NewRectangle(backgroundColour)
	overlay.background.CornerRadius = 8

	overlay.border = canvas.NewRectangle(color.Transparent)
	overlay.border.StrokeWidth = 2
	overlay.border.CornerRadius = 8

	overlay.indicator = canvas.NewRectangle(color.Transparent)
	overlay.indicator.StrokeWidth = 4
	overlay.indicator.StrokeColor = focusColour
	overlay.indicator.CornerRadius = 8
	overlay.indicator.Hide()

	overlay.titleLabel = canvas.NewText(instance.Preset.Title, foregroundColour)
	overlay.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	overlay.titleLabel.TextSize = 13

	overlay.clockLabel = canvas.NewText(FormatTimeLeft(instance.TimeLeft), foregroundColour)
	overlay.clockLabel.Alignment = fyne.TextAlignCenter
	overlay.clockLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	overlay.clockLabel.TextSize = 36

	overlay.runButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), overlay.toggleRunning)
	resetButton := widget.NewButtonWithIcon("", theme.MediaReplayIcon(), func() {
		overlay.tapped(syncproto.ResetTimer, nil)
	})
	overlay.modeButton = widget.NewButton("", overlay.toggleMode)
	overlay.muteButton = widget.NewButtonWithIcon("", theme.VolumeUpIcon(), func() {
		muted := !overlay.state.IsMuted
		overlay.tapped(syncproto.SetMute, func(request *syncproto.Request) {
			request.Muted = muted
		})
	})
	closeButton := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		overlay.tapped(syncproto.CloseTimer, nil)
	})
	for _, button := range []*widget.Button{overlay.runButton, resetButton, overlay.modeButton, overlay.muteButton, closeButton} {
		button.Importance = widget.LowImportance
	}

	controls := container.NewHBox(overlay.runButton, resetButton, layout.NewSpacer(), overlay.modeButton, overlay.muteButton, closeButton)
	face := container.New(&faceLayout{onResize: overlay.resized}, overlay.titleLabel, overlay.clockLabel, controls)
	window.SetContent(container.NewStack(overlay.background, overlay.border, overlay.indicator, face))
	window.Resize(fyne.NewSize(float32(instance.Size.Width), float32(instance.Size.Height)))
	window.SetOnClosed(func() {
		overlay.stopPulse()
		overlay.mailbox.Close()
		host.Destroyed(overlay.id)
	})

	overlay.mailbox = syncproto.NewMailbox(string(instance.InstanceID), options.PushBuffer, overlay.handle)
	overlay.render(instance)
	return overlay
}

// Deliver queues a push for the surface.
func (overlay *Window) Deliver(push syncproto.Push) {
	overlay.mailbox.Deliver(push)
}

// Show maps the window at its assigned position.
func (overlay *Window) Show() {
	fyne.Do(func() {
		overlay.window.Show()
		if !overlay.placed {
			placeNative(overlay.window, overlay.position)
			overlay.placed = true
			overlay.refresh()
		}
	})
}

// Focus raises the window and gives it input focus.
func (overlay *Window) Focus() {
	fyne.Do(func() {
		overlay.window.Show()
		overlay.window.RequestFocus()
	})
}

// KeepOnTop re-asserts topmost and reports a move if the platform saw one.
func (overlay *Window) KeepOnTop() {
	fyne.Do(func() {
		position, ok := raiseTopmost(overlay.window)
		if !ok || !overlay.placed || position == overlay.position {
			return
		}
		overlay.position = position
		overlay.request(syncproto.UpdatePosition, func(request *syncproto.Request) {
			request.Position = &position
		})
	})
}

// Close tears the window down. The host hears about it through Destroyed.
func (overlay *Window) Close() {
	overlay.mailbox.Close()
	fyne.Do(overlay.window.Close)
}

func (overlay *Window) handle(push syncproto.Push) {
	switch push.Kind {
	case syncproto.StateChanged:
		if push.Instance == nil {
			return
		}
		instance := *push.Instance
		fyne.Do(func() { overlay.render(instance) })
	case syncproto.GlobalAudioChanged:
		if push.Audio == nil {
			return
		}
		audio := *push.Audio
		fyne.Do(func() { overlay.audio = audio })
	case syncproto.LogicalFocusGained:
		fyne.Do(overlay.flashFocus)
	case syncproto.CueReached:
		if push.Cue == nil {
			return
		}
		cue := *push.Cue
		fyne.Do(func() { overlay.voice(cue) })
	default:
		logrus.WithFields(logrus.Fields{"instance": overlay.id, "push": push.Kind}).Debug("overlay ignores push")
	}
}

func (overlay *Window) render(instance model.TimerInstance) {
	overlay.state = instance
	variant := VariantFor(instance)

	overlay.clockLabel.Text = FormatTimeLeft(instance.TimeLeft)
	overlay.clockLabel.Color = variant.text()
	overlay.clockLabel.Refresh()

	if variant == VariantRed {
		overlay.startPulse()
	} else {
		overlay.stopPulse()
		overlay.border.StrokeColor = variant.border()
		overlay.border.Refresh()
	}

	if instance.IsRunning {
		overlay.runButton.SetIcon(theme.MediaPauseIcon())
	} else {
		overlay.runButton.SetIcon(theme.MediaPlayIcon())
	}
	overlay.modeButton.SetText(modeLabel(instance.AudioMode))
	if instance.IsMuted {
		overlay.muteButton.SetIcon(theme.VolumeMuteIcon())
	} else {
		overlay.muteButton.SetIcon(theme.VolumeUpIcon())
	}
}

// startPulse breathes the red border until the timer leaves the red state.
func (overlay *Window) startPulse() {
	if overlay.pulse != nil {
		return
	}
	overlay.pulse = canvas.NewColorRGBAAnimation(redColour, dimRedColour, pulsePeriod, func(value color.Color) {
		overlay.border.StrokeColor = value
		overlay.border.Refresh()
	})
	overlay.pulse.AutoReverse = true
	overlay.pulse.RepeatCount = fyne.AnimationRepeatForever
	overlay.pulse.Start()
}

func (overlay *Window) stopPulse() {
	if overlay.pulse == nil {
		return
	}
	overlay.pulse.Stop()
	overlay.pulse = nil
}

// flashFocus shows the focus ring without taking OS focus. A newer flash
// extends the ring; older timers see a stale generation and do nothing.
func (overlay *Window) flashFocus() {
	overlay.focusFlash++
	generation := overlay.focusFlash
	overlay.indicator.Show()
	overlay.indicator.Refresh()

	duration := overlay.options.FocusIndicator
	if duration <= 0 {
		duration = DefaultFocusIndicator
	}
	time.AfterFunc(duration, func() {
		fyne.Do(func() {
			if overlay.focusFlash != generation {
				return
			}
			overlay.indicator.Hide()
		})
	})
}

func (overlay *Window) voice(cue model.Cue) {
	volume := EffectiveVolume(overlay.state, overlay.audio)
	if volume <= 0 {
		return
	}
	player := overlay.options.Player
	if player == nil {
		player = LogPlayer
	}
	player.Play(cue, volume)
}

func (overlay *Window) resized(size fyne.Size) {
	reported := sizeOf(size)
	if reported.Width <= 0 || reported.Height <= 0 || reported == overlay.size {
		return
	}
	overlay.size = reported
	overlay.request(syncproto.UpdateSize, func(request *syncproto.Request) {
		request.Size = &reported
	})
}

func (overlay *Window) toggleRunning() {
	if overlay.state.IsRunning {
		overlay.tapped(syncproto.PauseTimer, nil)
		return
	}
	overlay.tapped(syncproto.StartTimer, nil)
}

func (overlay *Window) toggleMode() {
	mode := model.AudioBeep
	if overlay.state.AudioMode == model.AudioBeep {
		mode = model.AudioVoice
	}
	overlay.tapped(syncproto.SetAudioMode, func(request *syncproto.Request) {
		request.AudioMode = mode
	})
}

// tapped tells the core this surface is the one the user is working with,
// then sends the request.
func (overlay *Window) tapped(kind syncproto.RequestKind, fill func(*syncproto.Request)) {
	overlay.request(syncproto.NotifyFocused, nil)
	overlay.request(kind, fill)
}

// refresh asks the core for the current snapshot and renders it like any
// other state push.
func (overlay *Window) refresh() {
	overlay.send(syncproto.GetState, nil, func(response syncproto.Response) {
		if response.Instance != nil {
			overlay.mailbox.Deliver(syncproto.StateChangedPush(*response.Instance))
		}
	})
}

func (overlay *Window) request(kind syncproto.RequestKind, fill func(*syncproto.Request)) {
	overlay.send(kind, fill, nil)
}

func (overlay *Window) send(kind syncproto.RequestKind, fill func(*syncproto.Request), reply func(syncproto.Response)) {
	request := syncproto.NewRequest(kind)
	request.InstanceID = overlay.id
	if fill != nil {
		fill(&request)
	}
	overlay.host.Request(request, reply)
}

func modeLabel(mode model.AudioMode) string {
	switch mode {
	case model.AudioBeep:
		return "Beep"
	case model.AudioSilent:
		return "Off"
	default:
		return "Voice"
	}
}

// Factory creates overlay windows for the lifecycle manager.
type Factory struct {
	app     fyne.App
	options Options
}

// NewFactory returns a factory drawing into app.
func NewFactory(app fyne.App, options Options) *Factory {
	return &Factory{app: app, options: options}
}

// Create builds the window on the fyne thread and reports it ready. A panic
// from the driver is returned as an error.
func (factory *Factory) Create(instance model.TimerInstance, host lifecycle.Host) (lifecycle.Surface, error) {
	var (
		overlay *Window
		err     error
	)
	fyne.DoAndWait(func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("create window: %v", recovered)
			}
		}()
		overlay = newWindow(factory.app, instance, host, factory.options)
	})
	if err != nil {
		return nil, err
	}
	host.Ready(instance.InstanceID)
	return overlay, nil
}
