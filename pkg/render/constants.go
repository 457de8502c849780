package render

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Key constants for keyboard input
const (
	KeyW      = glfw.KeyW
	KeyA      = glfw.KeyA
	KeyS      = glfw.KeyS
	KeyD      = glfw.KeyD
	KeySpace  = glfw.KeySpace
	KeyEscape = glfw.KeyEscape
)

// Action constants for key states
const (
	Press   = glfw.Press
	Release = glfw.Release
)

// Camera constants
const (
	DefaultMoveSpeed   = 12.0
	DefaultRotateSpeed = 0.1

	// Facing -Z by default
	DefaultYaw   = -90.0
	DefaultPitch = 0.0

	DefaultFOV = 70.0
	MinFOV     = 20.0
	MaxFOV     = 90.0

	MaxPitch = 89.0
	MinPitch = -89.0
)
