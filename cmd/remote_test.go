package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"overtimer/internal/core/model"
	"overtimer/internal/core/syncproto"
)

func TestControlRequestInstanceActions(t *testing.T) {
	request, err := controlRequest([]string{"pause", "fire-1-1"})
	require.NoError(t, err)
	assert.Equal(t, syncproto.PauseTimer, request.Kind)
	assert.Equal(t, model.InstanceID("fire-1-1"), request.InstanceID)
	assert.NotEqual(t, uuid.Nil, request.ID)

	request, err = controlRequest([]string{"state", "fire-1-1"})
	require.NoError(t, err)
	assert.Equal(t, syncproto.GetState, request.Kind)

	_, err = controlRequest([]string{"start"})
	require.Error(t, err)
}

func TestControlRequestGlobalAudio(t *testing.T) {
	request, err := controlRequest([]string{"volume", "0.4"})
	require.NoError(t, err)
	assert.Equal(t, syncproto.SetGlobalVolume, request.Kind)
	assert.InDelta(t, 0.4, request.Volume, 1e-9)

	_, err = controlRequest([]string{"volume", "loud"})
	require.Error(t, err)

	request, err = controlRequest([]string{"mute"})
	require.NoError(t, err)
	assert.Equal(t, syncproto.ToggleGlobalMute, request.Kind)

	_, err = controlRequest([]string{"explode"})
	require.Error(t, err)
}

func TestControlRequestRejectsNonFiniteVolume(t *testing.T) {
	for _, value := range []string{"NaN", "nan", "Inf", "-Inf"} {
		_, err := controlRequest([]string{"volume", value})
		assert.Error(t, err, value)
	}
}

func TestPresetsCommandPrintsYAML(t *testing.T) {
	var out bytes.Buffer
	presetsCmd.SetOut(&out)
	t.Cleanup(func() { presetsCmd.SetOut(nil) })

	require.NoError(t, presetsCmd.RunE(presetsCmd, nil))

	var decoded []model.TimerPreset
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 5)
	assert.Equal(t, "backflow", decoded[0].ID)
	assert.Equal(t, "5", decoded[0].CountdownSounds[15])
	require.NotNil(t, decoded[0].InitialSize)
	assert.Equal(t, 192, decoded[0].InitialSize.Width)
}

func TestLaunchRejectsUnknownPreset(t *testing.T) {
	err := launchCmd.RunE(launchCmd, []string{"nope"})
	require.ErrorIs(t, err, model.ErrInvalidPreset)
}
