package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadIndexPattern(t *testing.T) {
	indices := quadIndexPattern(3)
	require.Len(t, indices, 18)
	assert.Equal(t, []uint32{
		0, 1, 2, 0, 2, 3,
		4, 5, 6, 4, 6, 7,
		8, 9, 10, 8, 10, 11,
	}, indices)
}

func TestCameraLooksDownNegativeZByDefault(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 0})
	front := c.FrontVector()
	assert.InDelta(t, 0, front.X(), 1e-5)
	assert.InDelta(t, 0, front.Y(), 1e-5)
	assert.InDelta(t, -1, front.Z(), 1e-5)
}

func TestCameraPitchClamped(t *testing.T) {
	c := NewCamera(mgl32.Vec3{})
	c.HandleMouseMovement(0, 0) // prime the cursor position
	c.HandleMouseMovement(0, -100000)
	front := c.FrontVector()
	assert.Less(t, front.Y(), float32(1.0))
	assert.Greater(t, front.Y(), float32(0.99), "pitch should clamp just below straight up")
}
