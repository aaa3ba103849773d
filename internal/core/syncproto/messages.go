// Package syncproto defines the messages exchanged between the core and its
// surfaces, how pushes are routed to them, and the stream codec used by the
// local control channel.
package syncproto

import (
	"github.com/google/uuid"

	"overtimer/internal/core/model"
)

// RequestKind names a surface-to-core request.
type RequestKind string

const (
	CreateTimer      RequestKind = "createTimer"
	StartTimer       RequestKind = "startTimer"
	PauseTimer       RequestKind = "pauseTimer"
	ResetTimer       RequestKind = "resetTimer"
	SetAudioMode     RequestKind = "setAudioMode"
	SetVolume        RequestKind = "setVolume"
	SetMute          RequestKind = "setMute"
	UpdatePosition   RequestKind = "updatePosition"
	UpdateSize       RequestKind = "updateSize"
	CloseTimer       RequestKind = "closeTimer"
	FocusTimer       RequestKind = "focusTimer"
	GetState         RequestKind = "getState"
	ListActive       RequestKind = "listActive"
	SetGlobalVolume  RequestKind = "setGlobalVolume"
	ToggleGlobalMute RequestKind = "toggleGlobalMute"
	NotifyFocused    RequestKind = "notifyFocused"
)

// Awaited reports whether the sender expects a response with a payload.
func (kind RequestKind) Awaited() bool {
	switch kind {
	case CreateTimer, GetState, ListActive:
		return true
	default:
		return false
	}
}

// PushKind names a core-to-surface message.
type PushKind string

const (
	StateChanged       PushKind = "stateChanged"
	GlobalAudioChanged PushKind = "globalAudioChanged"
	TimerCreated       PushKind = "timerCreated"
	TimerClosed        PushKind = "timerClosed"
	LogicalFocusGained PushKind = "logicalFocusGained"
	CueReached         PushKind = "cueReached"
)

// Request is a surface-to-core message. Only the fields the kind needs are set.
type Request struct {
	ID         uuid.UUID          `cbor:"1,keyasint"`
	Kind       RequestKind        `cbor:"2,keyasint"`
	InstanceID model.InstanceID   `cbor:"3,keyasint,omitempty"`
	PresetID   string             `cbor:"4,keyasint,omitempty"`
	Preset     *model.TimerPreset `cbor:"5,keyasint,omitempty"`
	AudioMode  model.AudioMode    `cbor:"6,keyasint,omitempty"`
	Volume     float64            `cbor:"7,keyasint,omitempty"`
	Muted      bool               `cbor:"8,keyasint,omitempty"`
	Position   *model.Position    `cbor:"9,keyasint,omitempty"`
	Size       *model.Size        `cbor:"10,keyasint,omitempty"`
}

// NewRequest creates a request with a fresh correlation id.
func NewRequest(kind RequestKind) Request {
	return Request{ID: uuid.New(), Kind: kind}
}

// Response answers a Request with the same ID.
type Response struct {
	ID         uuid.UUID            `cbor:"1,keyasint"`
	Error      string               `cbor:"2,keyasint,omitempty"`
	InstanceID model.InstanceID     `cbor:"3,keyasint,omitempty"`
	Instance   *model.TimerInstance `cbor:"4,keyasint,omitempty"`
	Active     []model.TimerSummary `cbor:"5,keyasint,omitempty"`
}

// Push is a core-to-surface message.
type Push struct {
	Kind       PushKind                `json:"kind"`
	Instance   *model.TimerInstance    `json:"instance,omitempty"`
	Audio      *model.GlobalAudioState `json:"audio,omitempty"`
	Summary    *model.TimerSummary     `json:"summary,omitempty"`
	InstanceID model.InstanceID        `json:"instanceId,omitempty"`
	Cue        *model.Cue              `json:"cue,omitempty"`
}

// StateChangedPush carries a fresh snapshot to the instance's own surface.
func StateChangedPush(instance model.TimerInstance) Push {
	return Push{Kind: StateChanged, Instance: &instance, InstanceID: instance.InstanceID}
}

// GlobalAudioPush carries the shared audio setting.
func GlobalAudioPush(audio model.GlobalAudioState) Push {
	return Push{Kind: GlobalAudioChanged, Audio: &audio}
}

// TimerCreatedPush tells the launcher a timer opened.
func TimerCreatedPush(summary model.TimerSummary) Push {
	return Push{Kind: TimerCreated, Summary: &summary, InstanceID: summary.InstanceID}
}

// TimerClosedPush tells the launcher a timer closed.
func TimerClosedPush(id model.InstanceID) Push {
	return Push{Kind: TimerClosed, InstanceID: id}
}

// LogicalFocusPush asks a surface to flash its focus indicator.
func LogicalFocusPush(id model.InstanceID) Push {
	return Push{Kind: LogicalFocusGained, InstanceID: id}
}

// CuePush asks a surface to voice a cue.
func CuePush(cue model.Cue) Push {
	return Push{Kind: CueReached, Cue: &cue, InstanceID: cue.InstanceID}
}
