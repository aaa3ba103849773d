package overlay

import (
	"fmt"
	"image/color"
	"math"

	"fyne.io/fyne/v2"

	"overtimer/internal/core/model"
)

// Variant is the visual state of a timer face.
type Variant int

const (
	VariantNormal Variant = iota
	VariantYellow
	VariantRed
	VariantFinished
)

const (
	defaultYellowThreshold = 10.0
	defaultRedThreshold    = 5.0
)

var (
	backgroundColour = color.NRGBA{R: 9, G: 9, B: 11, A: 102}
	foregroundColour = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	mutedColour      = color.NRGBA{R: 161, G: 161, B: 170, A: 255}
	yellowColour     = color.NRGBA{R: 250, G: 204, B: 21, A: 255}
	redColour        = color.NRGBA{R: 220, G: 38, B: 38, A: 255}
	dimRedColour     = color.NRGBA{R: 220, G: 38, B: 38, A: 90}
	focusColour      = color.NRGBA{R: 56, G: 189, B: 248, A: 255}
)

// VariantFor picks the face state from the remaining time and the preset's
// thresholds. Red wins over yellow; a finished timer is neither.
func VariantFor(instance model.TimerInstance) Variant {
	if instance.TimeLeft <= 0 {
		return VariantFinished
	}
	yellow := defaultYellowThreshold
	if instance.Preset.YellowThreshold != nil {
		yellow = *instance.Preset.YellowThreshold
	}
	red := defaultRedThreshold
	if instance.Preset.RedThreshold != nil {
		red = *instance.Preset.RedThreshold
	}
	switch {
	case instance.TimeLeft <= red:
		return VariantRed
	case instance.TimeLeft <= yellow:
		return VariantYellow
	default:
		return VariantNormal
	}
}

func (variant Variant) border() color.Color {
	switch variant {
	case VariantYellow:
		return yellowColour
	case VariantRed:
		return redColour
	default:
		return color.Transparent
	}
}

func (variant Variant) text() color.Color {
	if variant == VariantFinished {
		return mutedColour
	}
	return foregroundColour
}

// FormatTimeLeft renders seconds as "ss.t".
func FormatTimeLeft(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := math.Floor(seconds)
	tenths := int(math.Floor((seconds - whole) * 10))
	return fmt.Sprintf("%02d.%d", int(whole), tenths)
}

// EffectiveVolume combines the instance and global audio settings.
func EffectiveVolume(instance model.TimerInstance, audio model.GlobalAudioState) float64 {
	if instance.IsMuted || audio.IsMuted {
		return 0
	}
	return model.ClampVolume(instance.Volume) * model.ClampVolume(audio.Volume)
}

func sizeOf(size fyne.Size) model.Size {
	return model.Size{Width: int(math.Round(float64(size.Width))), Height: int(math.Round(float64(size.Height)))}
}

// faceLayout stacks title, clock and controls, and reports every size it is
// laid out at.
type faceLayout struct {
	onResize func(fyne.Size)
}

func (layout *faceLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 3 {
		return
	}
	title := objects[0]
	clock := objects[1]
	controls := objects[2]

	pad := size.Height * 0.05
	width := max(size.Width-pad*2, 0)

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(pad, pad))
	title.Resize(fyne.NewSize(width, titleSize.Height))

	controlsSize := controls.MinSize()
	controlsY := max(size.Height-pad-controlsSize.Height, 0)
	controls.Move(fyne.NewPos(pad, controlsY))
	controls.Resize(fyne.NewSize(width, controlsSize.Height))

	clockSize := clock.MinSize()
	top := pad + titleSize.Height
	clockY := max(top+(controlsY-top-clockSize.Height)/2, top)
	clock.Move(fyne.NewPos(pad, clockY))
	clock.Resize(fyne.NewSize(width, clockSize.Height))

	if layout.onResize != nil {
		layout.onResize(size)
	}
}

func (layout *faceLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 3 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(16)
	for _, object := range objects[:3] {
		size := object.MinSize()
		width = max(width, size.Width)
		height += size.Height
	}
	return fyne.NewSize(width+10, height)
}
