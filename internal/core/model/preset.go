package model

// TimerPreset is an immutable named timer configuration.
type TimerPreset struct {
	ID              string         `json:"id" yaml:"id" validate:"required"`
	Title           string         `json:"title" yaml:"title" validate:"required"`
	InitialTime     float64        `json:"initialTime" yaml:"initial_time" validate:"gt=0"`
	CompletionSound string         `json:"completionSound,omitempty" yaml:"completion_sound,omitempty"`
	CompletionTime  *int           `json:"completionTime,omitempty" yaml:"completion_time,omitempty" validate:"omitempty,gte=0"`
	WarningSound    string         `json:"warningSound,omitempty" yaml:"warning_sound,omitempty"`
	WarningTime     *int           `json:"warningTime,omitempty" yaml:"warning_time,omitempty" validate:"omitempty,gte=0"`
	CountdownSounds map[int]string `json:"countdownSounds,omitempty" yaml:"countdown_sounds,omitempty" validate:"omitempty,dive,keys,gte=0,endkeys,required"`
	YellowThreshold *float64       `json:"yellowThreshold,omitempty" yaml:"yellow_threshold,omitempty" validate:"omitempty,gte=0"`
	RedThreshold    *float64       `json:"redThreshold,omitempty" yaml:"red_threshold,omitempty" validate:"omitempty,gte=0"`
	InitialSize     *Size          `json:"initialSize,omitempty" yaml:"initial_size,omitempty"`
}

// Seconds returns a pointer to an integer second mark.
func Seconds(value int) *int {
	return &value
}

// Threshold returns a pointer to a colour threshold.
func Threshold(value float64) *float64 {
	return &value
}
