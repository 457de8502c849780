package render

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mkrall/go-terrain/internal/openglhelper"
)

// Camera is a free-flying first person camera.
type Camera struct {
	position mgl32.Vec3
	worldUp  mgl32.Vec3
	front    mgl32.Vec3
	up       mgl32.Vec3
	right    mgl32.Vec3

	yaw   float32
	pitch float32

	fov         float32
	moveSpeed   float32
	rotateSpeed float32

	lastX      float64
	lastY      float64
	firstMouse bool

	projection mgl32.Mat4
	width      int
	height     int
}

// NewCamera creates a camera at the given position with default settings.
func NewCamera(position mgl32.Vec3) *Camera {
	camera := &Camera{
		position:    position,
		worldUp:     mgl32.Vec3{0, 1, 0},
		front:       mgl32.Vec3{0, 0, -1},
		yaw:         DefaultYaw,
		pitch:       DefaultPitch,
		fov:         DefaultFOV,
		moveSpeed:   DefaultMoveSpeed,
		rotateSpeed: DefaultRotateSpeed,
		firstMouse:  true,
		width:       800,
		height:      600,
	}
	camera.updateCameraVectors()
	camera.updateProjectionMatrix()
	return camera
}

func (c *Camera) updateCameraVectors() {
	front := mgl32.Vec3{
		float32(math.Cos(float64(mgl32.DegToRad(c.yaw))) * math.Cos(float64(mgl32.DegToRad(c.pitch)))),
		float32(math.Sin(float64(mgl32.DegToRad(c.pitch)))),
		float32(math.Sin(float64(mgl32.DegToRad(c.yaw))) * math.Cos(float64(mgl32.DegToRad(c.pitch)))),
	}
	c.front = front.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

func (c *Camera) updateProjectionMatrix() {
	aspect := float32(c.width) / float32(c.height)
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), aspect, 0.1, 1000.0)
}

// UpdateProjectionMatrix recomputes the projection for new dimensions.
func (c *Camera) UpdateProjectionMatrix(width, height int) {
	c.width = width
	c.height = height
	c.updateProjectionMatrix()
}

// ViewMatrix returns the current view matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
}

// ProjectionMatrix returns the current projection matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

// Position returns the camera position.
func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

// SetPosition moves the camera.
func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.position = pos
}

// SetMoveSpeed overrides the movement speed in units per second.
func (c *Camera) SetMoveSpeed(speed float32) {
	if speed > 0 {
		c.moveSpeed = speed
	}
}

// SetFOV overrides the vertical field of view in degrees.
func (c *Camera) SetFOV(fov float32) {
	c.fov = mgl32.Clamp(fov, MinFOV, MaxFOV)
	c.updateProjectionMatrix()
}

// LookAt orients the camera toward a world point.
func (c *Camera) LookAt(target mgl32.Vec3) {
	direction := target.Sub(c.position).Normalize()
	c.yaw = mgl32.RadToDeg(float32(math.Atan2(float64(direction.Z()), float64(direction.X()))))
	c.pitch = mgl32.RadToDeg(float32(math.Asin(float64(direction.Y()))))
	c.updateCameraVectors()
}

// FrontVector returns the camera's front direction.
func (c *Camera) FrontVector() mgl32.Vec3 {
	return c.front
}

// ProcessKeyboardInput applies WASD plus space/shift movement.
func (c *Camera) ProcessKeyboardInput(deltaTime float32, window *openglhelper.Window) {
	speed := c.moveSpeed * deltaTime

	if window.GetKeyState(KeyW) == Press {
		c.position = c.position.Add(c.front.Mul(speed))
	}
	if window.GetKeyState(KeyS) == Press {
		c.position = c.position.Sub(c.front.Mul(speed))
	}
	if window.GetKeyState(KeyA) == Press {
		c.position = c.position.Sub(c.right.Mul(speed))
	}
	if window.GetKeyState(KeyD) == Press {
		c.position = c.position.Add(c.right.Mul(speed))
	}
	if window.GetKeyState(KeySpace) == Press {
		c.position = c.position.Add(c.worldUp.Mul(speed))
	}
	if window.GetKeyState(glfw.KeyLeftShift) == Press {
		c.position = c.position.Sub(c.worldUp.Mul(speed))
	}
}

// HandleMouseMovement updates yaw and pitch from cursor motion.
func (c *Camera) HandleMouseMovement(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX = xpos
		c.lastY = ypos
		c.firstMouse = false
		return
	}

	xoffset := float32(xpos-c.lastX) * c.rotateSpeed
	yoffset := float32(c.lastY-ypos) * c.rotateSpeed
	c.lastX = xpos
	c.lastY = ypos

	c.yaw += xoffset
	c.pitch = mgl32.Clamp(c.pitch+yoffset, MinPitch, MaxPitch)
	c.updateCameraVectors()
}

// HandleMouseScroll zooms by adjusting the field of view.
func (c *Camera) HandleMouseScroll(yoffset float64) {
	c.SetFOV(c.fov - float32(yoffset))
}

// ResetMouseState drops the remembered cursor position so the next mouse
// event does not cause a jump.
func (c *Camera) ResetMouseState() {
	c.firstMouse = true
}
