package sprite

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadBufferDrainSplitsAtLimit(t *testing.T) {
	b := newQuadBuffer(10)
	for i := 0; i < 25; i++ {
		b.add(float32(i), 0, 1, 1, mgl32.Vec4{1, 1, 1, 1})
	}
	require.Equal(t, 25, b.quadCount())

	chunks := b.drain()
	require.Len(t, chunks, 3)
	perQuad := 6 * vertexFloats
	assert.Len(t, chunks[0], 10*perQuad)
	assert.Len(t, chunks[1], 10*perQuad)
	assert.Len(t, chunks[2], 5*perQuad)

	assert.Equal(t, 0, b.quadCount(), "drain empties the buffer")
	assert.Equal(t, 25, b.flushedQuads)
}

func TestQuadBufferVertexLayout(t *testing.T) {
	b := newQuadBuffer(10)
	b.add(2, 3, 4, 5, mgl32.Vec4{0.1, 0.2, 0.3, 0.4})

	chunks := b.drain()
	require.Len(t, chunks, 1)
	verts := chunks[0]
	require.Len(t, verts, 6*vertexFloats)

	// First vertex: top-left corner with the quad color.
	assert.Equal(t, float32(2), verts[0])
	assert.Equal(t, float32(3), verts[1])
	assert.Equal(t, float32(0.1), verts[2])
	assert.Equal(t, float32(0.4), verts[5])

	// Third vertex: opposite corner.
	assert.Equal(t, float32(6), verts[2*vertexFloats])
	assert.Equal(t, float32(8), verts[2*vertexFloats+1])
}

func TestQuadBufferEmptyDrain(t *testing.T) {
	b := newQuadBuffer(10)
	assert.Empty(t, b.drain())
}
