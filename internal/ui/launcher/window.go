// Package launcher is the window used to open timers and manage the ones
// already running.
package launcher

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"overtimer/internal/core/model"
	"overtimer/internal/core/syncproto"
)

const requestTimeout = 5 * time.Second

// Controller is the part of the timer core the launcher drives.
type Controller interface {
	CreateTimerByID(ctx context.Context, presetID string) (model.InstanceID, error)
	ListActive(ctx context.Context) ([]model.TimerSummary, error)
	FocusTimer(id model.InstanceID)
	CloseTimer(id model.InstanceID)
	SetGlobalVolume(volume float64)
	ToggleGlobalMute()
}

// Window handles the launcher UI.
type Window struct {
	window     fyne.Window
	controller Controller
	mailbox    *syncproto.Mailbox

	list   *widget.List
	volume *widget.Slider
	mute   *widget.Check
	status *widget.Label

	active  ActiveList
	audio   model.GlobalAudioState
	onAudio func(model.GlobalAudioState)
}

// New creates the launcher window for presets.
func New(app fyne.App, presets []model.TimerPreset, controller Controller, pushBuffer int) *Window {
	launcher := &Window{
		window:     app.NewWindow("Overtimer"),
		controller: controller,
		audio:      model.DefaultGlobalAudio(),
	}

	buttons := make([]fyne.CanvasObject, 0, len(presets))
	for _, preset := range presets {
		presetID := preset.ID
		buttons = append(buttons, widget.NewButton(preset.Title, func() {
			launcher.launch(presetID)
		}))
	}

	launcher.list = widget.NewList(
		launcher.active.Len,
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewLabel("timer"),
				layout.NewSpacer(),
				widget.NewButtonWithIcon("", theme.VisibilityIcon(), nil),
				widget.NewButtonWithIcon("", theme.CancelIcon(), nil),
			)
		},
		launcher.updateRow,
	)

	launcher.volume = widget.NewSlider(0, 1)
	launcher.volume.Step = 0.05
	launcher.volume.Value = launcher.audio.Volume
	launcher.volume.OnChangeEnded = func(value float64) {
		launcher.controller.SetGlobalVolume(value)
	}

	launcher.mute = widget.NewCheck("Mute all timers", func(checked bool) {
		if checked == launcher.audio.IsMuted {
			return
		}
		launcher.controller.ToggleGlobalMute()
	})

	launcher.status = widget.NewLabel("")

	header := container.NewVBox(
		widget.NewLabelWithStyle("Timers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(3, buttons...),
		widget.NewLabelWithStyle("Open", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	footer := container.NewVBox(
		widget.NewLabel("Volume"),
		launcher.volume,
		launcher.mute,
		launcher.status,
	)

	launcher.window.SetContent(container.NewBorder(header, footer, nil, nil, launcher.list))
	launcher.window.Resize(fyne.NewSize(360, 420))
	launcher.mailbox = syncproto.NewMailbox("launcher", pushBuffer, launcher.handle)
	return launcher
}

// Peer returns the push target for the launcher.
func (launcher *Window) Peer() syncproto.Peer {
	return launcher.mailbox
}

// Show displays the launcher and refreshes the open-timer list.
func (launcher *Window) Show() {
	launcher.window.Show()
	launcher.window.RequestFocus()
	go launcher.refresh()
}

// SetOnClosed runs fn after the launcher window closes.
func (launcher *Window) SetOnClosed(fn func()) {
	launcher.window.SetOnClosed(func() {
		launcher.mailbox.Close()
		if fn != nil {
			fn()
		}
	})
}

// SetOnAudioChanged runs fn on the fyne thread whenever the shared audio
// state changes.
func (launcher *Window) SetOnAudioChanged(fn func(model.GlobalAudioState)) {
	launcher.onAudio = fn
}

// Launch opens a timer for presetID without blocking the caller.
func (launcher *Window) Launch(presetID string) {
	launcher.launch(presetID)
}

func (launcher *Window) launch(presetID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		id, err := launcher.controller.CreateTimerByID(ctx, presetID)
		if err != nil {
			logrus.WithError(err).WithField("preset", presetID).Warn("launch failed")
			fyne.Do(func() { launcher.status.SetText(fmt.Sprintf("Could not open %s: %v", presetID, err)) })
			return
		}
		logrus.WithFields(logrus.Fields{"preset": presetID, "instance": id}).Debug("launched from launcher")
		fyne.Do(func() { launcher.status.SetText("") })
	}()
}

func (launcher *Window) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	active, err := launcher.controller.ListActive(ctx)
	if err != nil {
		logrus.WithError(err).Debug("launcher could not list timers")
		return
	}
	fyne.Do(func() {
		launcher.active.Replace(active)
		launcher.list.Refresh()
	})
}

func (launcher *Window) handle(push syncproto.Push) {
	switch push.Kind {
	case syncproto.TimerCreated:
		if push.Summary == nil {
			return
		}
		summary := *push.Summary
		fyne.Do(func() {
			if launcher.active.Add(summary) {
				launcher.list.Refresh()
			}
		})
	case syncproto.TimerClosed:
		id := push.InstanceID
		fyne.Do(func() {
			if launcher.active.Remove(id) {
				launcher.list.Refresh()
			}
		})
	case syncproto.GlobalAudioChanged:
		if push.Audio == nil {
			return
		}
		audio := *push.Audio
		fyne.Do(func() { launcher.applyAudio(audio) })
	}
}

func (launcher *Window) applyAudio(audio model.GlobalAudioState) {
	launcher.audio = audio
	launcher.volume.SetValue(audio.Volume)
	launcher.mute.SetChecked(audio.IsMuted)
	if launcher.onAudio != nil {
		launcher.onAudio(audio)
	}
}

func (launcher *Window) updateRow(index widget.ListItemID, item fyne.CanvasObject) {
	summary, ok := launcher.active.At(index)
	if !ok {
		return
	}
	row := item.(*fyne.Container)
	row.Objects[0].(*widget.Label).SetText(summary.Title)
	row.Objects[2].(*widget.Button).OnTapped = func() {
		launcher.controller.FocusTimer(summary.InstanceID)
	}
	row.Objects[3].(*widget.Button).OnTapped = func() {
		launcher.controller.CloseTimer(summary.InstanceID)
	}
}
