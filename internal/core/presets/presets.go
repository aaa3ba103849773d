// Package presets holds the timer presets compiled into the binary.
package presets

import (
	"strings"

	"overtimer/internal/core/model"
)

var builtin = []model.TimerPreset{
	{
		ID:              "backflow",
		Title:           "Backflow",
		InitialTime:     30,
		CompletionSound: "backflow",
		CompletionTime:  model.Seconds(10),
		WarningSound:    "backflow-in",
		WarningTime:     model.Seconds(16),
		CountdownSounds: map[int]string{15: "5", 14: "4", 13: "3", 12: "2", 11: "1"},
		YellowThreshold: model.Threshold(15),
		RedThreshold:    model.Threshold(10),
		InitialSize:     &model.Size{Width: 192, Height: 130},
	},
	{
		ID:              "reflect",
		Title:           "Reflect",
		InitialTime:     35,
		CompletionSound: "reflect",
		CompletionTime:  model.Seconds(5),
		WarningSound:    "reflect-in",
		WarningTime:     model.Seconds(11),
		CountdownSounds: map[int]string{10: "5", 9: "4", 8: "3", 7: "2", 6: "1"},
		YellowThreshold: model.Threshold(10),
		RedThreshold:    model.Threshold(5),
	},
	{
		ID:              "fire",
		Title:           "Fire",
		InitialTime:     30,
		CompletionSound: "fire",
		CompletionTime:  model.Seconds(0),
		WarningSound:    "fire-in",
		WarningTime:     model.Seconds(6),
		CountdownSounds: map[int]string{5: "5", 4: "4", 3: "3", 2: "2", 1: "1"},
		YellowThreshold: model.Threshold(8),
		RedThreshold:    model.Threshold(4),
	},
	{
		ID:              "lightning",
		Title:           "Lightning",
		InitialTime:     30,
		CompletionSound: "lightning",
		CompletionTime:  model.Seconds(0),
		WarningSound:    "lightning-in",
		WarningTime:     model.Seconds(6),
		CountdownSounds: map[int]string{5: "5", 4: "4", 3: "3", 2: "2", 1: "1"},
		YellowThreshold: model.Threshold(8),
		RedThreshold:    model.Threshold(4),
	},
	{
		ID:              "fusestorm",
		Title:           "Fuse Storm",
		InitialTime:     25,
		CompletionSound: "fuse-storm",
		CompletionTime:  model.Seconds(0),
		WarningSound:    "fuse-storm-in",
		WarningTime:     model.Seconds(6),
		CountdownSounds: map[int]string{5: "5", 4: "4", 3: "3", 2: "2", 1: "1"},
		YellowThreshold: model.Threshold(8),
		RedThreshold:    model.Threshold(4),
	},
}

// All returns the built-in presets in display order.
func All() []model.TimerPreset {
	return append([]model.TimerPreset(nil), builtin...)
}

// ByID looks up a preset by id, case-insensitively.
func ByID(id string) (model.TimerPreset, bool) {
	for _, preset := range builtin {
		if strings.EqualFold(preset.ID, id) {
			return preset, true
		}
	}
	return model.TimerPreset{}, false
}

// ByTitle looks up a preset by its display title.
func ByTitle(title string) (model.TimerPreset, bool) {
	for _, preset := range builtin {
		if preset.Title == title {
			return preset, true
		}
	}
	return model.TimerPreset{}, false
}
