package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"overtimer/internal/core/model"
	"overtimer/internal/core/syncproto"
)

// host receives callbacks from surfaces and queues them on the loop.
type host struct{ engine *Engine }

func (host host) Ready(id model.InstanceID) {
	host.engine.post("surface ready", func() { host.engine.surfaces.Ready(id) })
}

func (host host) Destroyed(id model.InstanceID) {
	host.engine.post("surface destroyed", func() { host.engine.surfaces.Destroyed(id) })
}

// Request serves a surface request. Awaited kinds are answered from their own
// goroutine so the caller never waits on the loop; reply may be nil.
func (host host) Request(request syncproto.Request, reply func(syncproto.Response)) {
	answer := func(response syncproto.Response) {
		if response.Error != "" {
			logrus.WithFields(logrus.Fields{"request": request.Kind, "error": response.Error}).Warn("surface request failed")
		}
		if reply != nil {
			reply(response)
		}
	}
	if request.Kind.Awaited() {
		go answer(host.engine.HandleRequest(context.Background(), request))
		return
	}
	answer(host.engine.HandleRequest(context.Background(), request))
}

// loopControls gives the hotkey dispatcher direct access while on the loop.
type loopControls struct{ engine *Engine }

func (controls loopControls) LaunchPreset(presetID string) {
	preset, ok := controls.engine.presets(presetID)
	if !ok {
		logrus.WithField("preset", presetID).Warn("hotkey names unknown preset")
		return
	}
	if _, err := controls.engine.create(&preset); err != nil {
		logrus.WithError(err).WithField("preset", presetID).Error("could not launch timer")
	}
}

func (controls loopControls) StartTimer(id model.InstanceID) { controls.engine.start(id) }
func (controls loopControls) PauseTimer(id model.InstanceID) { controls.engine.registry.Pause(id) }
func (controls loopControls) ResetTimer(id model.InstanceID) { controls.engine.registry.Reset(id) }

func (controls loopControls) IndicateFocus(id model.InstanceID) {
	controls.engine.hub.SendTo(id, syncproto.LogicalFocusPush(id))
}

func (controls loopControls) OpenInstances() []model.InstanceID {
	return controls.engine.registry.IDs()
}

// HandleRequest serves one request. Awaited kinds block until the loop has
// answered; the rest are queued and acknowledged immediately.
func (engine *Engine) HandleRequest(ctx context.Context, request syncproto.Request) syncproto.Response {
	response := syncproto.Response{ID: request.ID}
	fail := func(err error) syncproto.Response {
		response.Error = err.Error()
		return response
	}

	switch request.Kind {
	case syncproto.CreateTimer:
		var (
			id  model.InstanceID
			err error
		)
		if request.Preset != nil {
			id, err = engine.CreateTimer(ctx, request.Preset)
		} else {
			id, err = engine.CreateTimerByID(ctx, request.PresetID)
		}
		if err != nil {
			return fail(err)
		}
		response.InstanceID = id
	case syncproto.GetState:
		instance, ok, err := engine.GetState(ctx, request.InstanceID)
		if err != nil {
			return fail(err)
		}
		if ok {
			response.Instance = &instance
			response.InstanceID = instance.InstanceID
		}
	case syncproto.ListActive:
		active, err := engine.ListActive(ctx)
		if err != nil {
			return fail(err)
		}
		response.Active = active
	case syncproto.StartTimer:
		engine.StartTimer(request.InstanceID)
	case syncproto.PauseTimer:
		engine.PauseTimer(request.InstanceID)
	case syncproto.ResetTimer:
		engine.ResetTimer(request.InstanceID)
	case syncproto.SetAudioMode:
		engine.SetAudioMode(request.InstanceID, request.AudioMode)
	case syncproto.SetVolume:
		engine.SetVolume(request.InstanceID, request.Volume)
	case syncproto.SetMute:
		engine.SetMute(request.InstanceID, request.Muted)
	case syncproto.UpdatePosition:
		if request.Position == nil {
			return fail(fmt.Errorf("updatePosition: missing position"))
		}
		engine.UpdatePosition(request.InstanceID, *request.Position)
	case syncproto.UpdateSize:
		if request.Size == nil {
			return fail(fmt.Errorf("updateSize: missing size"))
		}
		engine.UpdateSize(request.InstanceID, *request.Size)
	case syncproto.CloseTimer:
		engine.CloseTimer(request.InstanceID)
	case syncproto.FocusTimer:
		engine.FocusTimer(request.InstanceID)
	case syncproto.NotifyFocused:
		engine.NotifyFocused(request.InstanceID)
	case syncproto.SetGlobalVolume:
		engine.SetGlobalVolume(request.Volume)
	case syncproto.ToggleGlobalMute:
		engine.ToggleGlobalMute()
	default:
		return fail(fmt.Errorf("unsupported request %q", request.Kind))
	}
	return response
}
