// Package sprite batches colored 2D quads for overlay drawing (crosshair,
// debug panels). Quads are collected CPU-side and flushed to an orphaned
// vertex buffer in bounded slices.
package sprite

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mkrall/go-terrain/internal/openglhelper"
)

// floats per vertex: x, y, r, g, b, a
const vertexFloats = 6

// quadBuffer accumulates quads and hands them out in flush-sized chunks.
// It carries no GL state, so the splitting logic is testable headless.
type quadBuffer struct {
	verts        []float32
	maxPerFlush  int
	flushedQuads int
}

func newQuadBuffer(maxQuadsPerFlush int) *quadBuffer {
	if maxQuadsPerFlush < 1 {
		maxQuadsPerFlush = 256
	}
	return &quadBuffer{maxPerFlush: maxQuadsPerFlush}
}

// add appends one axis-aligned quad as two CCW triangles.
func (b *quadBuffer) add(x, y, w, h float32, color mgl32.Vec4) {
	r, g, bl, a := color.X(), color.Y(), color.Z(), color.W()
	b.verts = append(b.verts,
		x, y, r, g, bl, a,
		x+w, y, r, g, bl, a,
		x+w, y+h, r, g, bl, a,

		x, y, r, g, bl, a,
		x+w, y+h, r, g, bl, a,
		x, y+h, r, g, bl, a,
	)
}

func (b *quadBuffer) quadCount() int {
	return len(b.verts) / (vertexFloats * 6)
}

// drain returns the pending vertices split into chunks of at most
// maxPerFlush quads each, and resets the buffer.
func (b *quadBuffer) drain() [][]float32 {
	var chunks [][]float32
	chunkFloats := b.maxPerFlush * 6 * vertexFloats
	for start := 0; start < len(b.verts); start += chunkFloats {
		end := start + chunkFloats
		if end > len(b.verts) {
			end = len(b.verts)
		}
		chunks = append(chunks, b.verts[start:end])
	}
	b.flushedQuads += b.quadCount()
	b.verts = b.verts[:0]
	return chunks
}

const spriteVertexShader = `#version 460 core

layout (location = 0) in vec2 position;
layout (location = 1) in vec4 color;

uniform mat4 projection;

out vec4 fragColor;

void main() {
    fragColor = color;
    gl_Position = projection * vec4(position, 0.0, 1.0);
}
`

const spriteFragmentShader = `#version 460 core

in vec4 fragColor;
out vec4 outColor;

void main() {
    outColor = fragColor;
}
`

// Batch draws queued quads in screen space. Create it after the GL context
// exists and call all methods from the render thread.
type Batch struct {
	buf    *quadBuffer
	shader *openglhelper.Shader
	vao    *openglhelper.VertexArrayObject
	vbo    *openglhelper.BufferObject
}

// NewBatch creates a sprite batch flushing at most maxQuadsPerFlush quads
// per draw call.
func NewBatch(maxQuadsPerFlush int) (*Batch, error) {
	shader, err := openglhelper.NewShader(spriteVertexShader, spriteFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("sprite shader: %w", err)
	}

	buf := newQuadBuffer(maxQuadsPerFlush)
	vao := openglhelper.NewVAO()
	vao.Bind()
	vbo := openglhelper.NewVBO(buf.maxPerFlush*6*vertexFloats*4, openglhelper.StreamDraw)
	stride := int32(vertexFloats * 4)
	vao.SetVertexAttribPointer(0, 2, gl.FLOAT, false, stride, 0)
	vao.SetVertexAttribPointer(1, 4, gl.FLOAT, false, stride, 2*4)
	vao.Unbind()

	return &Batch{buf: buf, shader: shader, vao: vao, vbo: vbo}, nil
}

// Add queues one colored quad in pixel coordinates.
func (b *Batch) Add(x, y, w, h float32, color mgl32.Vec4) {
	b.buf.add(x, y, w, h, color)
}

// Flush draws all queued quads with an orthographic projection for the
// given viewport and empties the queue. The vertex buffer is orphaned
// before each chunk upload so uploads never stall on in-flight draws.
func (b *Batch) Flush(viewportWidth, viewportHeight int) {
	chunks := b.buf.drain()
	if len(chunks) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	b.shader.Use()
	proj := mgl32.Ortho2D(0, float32(viewportWidth), float32(viewportHeight), 0)
	b.shader.SetMat4("projection", proj)

	b.vao.Bind()
	for _, chunk := range chunks {
		b.vbo.Orphan()
		b.vbo.UpdateSubData(0, len(chunk)*4, gl.Ptr(chunk))
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(chunk)/vertexFloats))
	}
	b.vao.Unbind()

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Cleanup releases the GL resources.
func (b *Batch) Cleanup() {
	if b.vbo != nil {
		b.vbo.Delete()
		b.vbo = nil
	}
	if b.vao != nil {
		b.vao.Delete()
		b.vao = nil
	}
	if b.shader != nil {
		b.shader.Delete()
		b.shader = nil
	}
}
