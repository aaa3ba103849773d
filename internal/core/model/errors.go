package model

import "errors"

var (
	// ErrInvalidPreset indicates a creation request with a missing or malformed preset.
	ErrInvalidPreset = errors.New("invalid preset")
	// ErrUnknownInstance indicates a request for a removed or never-created instance.
	ErrUnknownInstance = errors.New("unknown timer instance")
	// ErrSurfaceCreation indicates the platform refused to create a rendering surface.
	ErrSurfaceCreation = errors.New("surface creation failed")
	// ErrGeometryOffscreen indicates persisted bounds no longer lie on an attached display.
	ErrGeometryOffscreen = errors.New("persisted bounds are offscreen")
	// ErrHotkeyRegistration indicates a global binding could not be installed.
	ErrHotkeyRegistration = errors.New("hotkey registration failed")
)
