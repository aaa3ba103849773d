package model

// CueKind names the point in a countdown that triggered a cue.
type CueKind string

const (
	CueWarning    CueKind = "warning"
	CueCountdown  CueKind = "countdown"
	CueCompletion CueKind = "completion"
)

// Sound aliases used in beep mode.
const (
	SoundBeepShort = "beep-short"
	SoundBeepLong  = "beep-long"
)

// Cue asks a surface to voice a sound alias. Playback happens outside the core.
type Cue struct {
	InstanceID InstanceID `json:"instanceId"`
	Kind       CueKind    `json:"kind"`
	Second     int        `json:"second"`
	Sound      string     `json:"sound"`
}
