package registry

import (
	"fmt"
	"math"

	"overtimer/internal/core/model"
)

// reachedCues reports the cue due at the current whole second, if it has not
// fired yet this cycle. Completion wins over a countdown mark, which wins over
// the warning.
func (current *entry) reachedCues() []model.Cue {
	instance := current.instance
	preset := instance.Preset
	mode := instance.AudioMode
	if mode == model.AudioSilent {
		return nil
	}
	second := int(math.Floor(instance.TimeLeft))

	cue, key := model.Cue{InstanceID: instance.InstanceID, Second: second}, ""
	switch {
	case preset.CompletionTime != nil && second <= *preset.CompletionTime &&
		(mode == model.AudioBeep || preset.CompletionSound != ""):
		cue.Kind, key = model.CueCompletion, "completion"
		cue.Sound = pick(mode, preset.CompletionSound, model.SoundBeepLong)
	case preset.CountdownSounds[second] != "":
		cue.Kind, key = model.CueCountdown, fmt.Sprintf("countdown-%d", second)
		cue.Sound = pick(mode, preset.CountdownSounds[second], model.SoundBeepShort)
	case preset.WarningTime != nil && second <= *preset.WarningTime &&
		(mode == model.AudioBeep || preset.WarningSound != ""):
		cue.Kind, key = model.CueWarning, "warning"
		cue.Sound = pick(mode, preset.WarningSound, model.SoundBeepShort)
	default:
		return nil
	}

	if current.fired[key] {
		return nil
	}
	current.fired[key] = true
	return []model.Cue{cue}
}

func pick(mode model.AudioMode, voice, beep string) string {
	if mode == model.AudioBeep {
		return beep
	}
	return voice
}
