package model

import "math"

// InstanceID identifies one running copy of a preset. It is opaque to callers.
type InstanceID string

// AudioMode selects how cues are voiced for an instance.
type AudioMode string

const (
	AudioVoice  AudioMode = "voice"
	AudioBeep   AudioMode = "beep"
	AudioSilent AudioMode = "silent"
)

// Valid reports whether the mode is one of the known modes.
func (mode AudioMode) Valid() bool {
	switch mode {
	case AudioVoice, AudioBeep, AudioSilent:
		return true
	default:
		return false
	}
}

// TimerInstance is a snapshot of one timer's authoritative state.
// Values handed out by the core are copies; mutating them has no effect on the core.
type TimerInstance struct {
	InstanceID InstanceID  `json:"instanceId"`
	Preset     TimerPreset `json:"preset"`
	Position   Position    `json:"position"`
	Size       Size        `json:"size"`
	TimeLeft   float64     `json:"timeLeft"`
	IsRunning  bool        `json:"isRunning"`
	AudioMode  AudioMode   `json:"audioMode"`
	Volume     float64     `json:"volume"`
	IsMuted    bool        `json:"isMuted"`
}

// Summary returns the launcher-facing view of the instance.
func (instance TimerInstance) Summary() TimerSummary {
	return TimerSummary{InstanceID: instance.InstanceID, Title: instance.Preset.Title}
}

// TimerSummary is the launcher list entry for an open timer.
type TimerSummary struct {
	InstanceID InstanceID `json:"instanceId"`
	Title      string     `json:"title"`
}

// GlobalAudioState is the process-wide audio setting shared by every surface.
type GlobalAudioState struct {
	Volume  float64 `json:"volume"`
	IsMuted bool    `json:"isMuted"`
}

// DefaultGlobalAudio returns full volume, unmuted.
func DefaultGlobalAudio() GlobalAudioState {
	return GlobalAudioState{Volume: 1, IsMuted: false}
}

// ClampVolume limits a volume to [0, 1]. NaN counts as silence.
func ClampVolume(volume float64) float64 {
	if math.IsNaN(volume) || volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
