// Package openglhelper wraps the raw OpenGL buffer, shader and window calls
// in a small Go-friendly API. Everything here must run on the thread that
// owns the GL context.
package openglhelper

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// DrawElementsIndirectCommand matches the layout OpenGL expects for a
// single command in a multi-draw indirect buffer.
type DrawElementsIndirectCommand struct {
	Count         uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	BaseInstance  uint32
}

// DrawElementsIndirectCommandSize is the size of one command in bytes.
const DrawElementsIndirectCommandSize = int(unsafe.Sizeof(DrawElementsIndirectCommand{}))

// BufferUsage is the GL usage hint passed at allocation.
type BufferUsage uint32

const (
	StaticDraw  BufferUsage = gl.STATIC_DRAW
	DynamicDraw BufferUsage = gl.DYNAMIC_DRAW
	StreamDraw  BufferUsage = gl.STREAM_DRAW
)

// BufferObject wraps one GL buffer (VBO, EBO, SSBO, indirect buffer).
type BufferObject struct {
	ID    uint32
	Type  uint32
	Size  int
	Usage uint32

	mapped     unsafe.Pointer
	persistent bool
}

// NewBufferObject allocates a buffer of the given target and size. Pass a
// nil data pointer to leave the contents undefined.
func NewBufferObject(target uint32, sizeInBytes int, data unsafe.Pointer, usage BufferUsage) *BufferObject {
	var id uint32
	gl.GenBuffers(1, &id)

	bo := &BufferObject{ID: id, Type: target, Size: sizeInBytes, Usage: uint32(usage)}
	bo.Bind()
	gl.BufferData(target, sizeInBytes, data, uint32(usage))
	return bo
}

// NewVBO allocates an empty array buffer.
func NewVBO(sizeInBytes int, usage BufferUsage) *BufferObject {
	return NewBufferObject(gl.ARRAY_BUFFER, sizeInBytes, nil, usage)
}

// NewEBO allocates an element array buffer filled with the given indices.
func NewEBO(indices []uint32, usage BufferUsage) *BufferObject {
	return NewBufferObject(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), usage)
}

// NewIndirectBuffer allocates a buffer for multi-draw indirect commands.
func NewIndirectBuffer(maxCommands int, usage BufferUsage) *BufferObject {
	return NewBufferObject(gl.DRAW_INDIRECT_BUFFER, maxCommands*DrawElementsIndirectCommandSize, nil, usage)
}

// NewPersistentBuffer allocates immutable storage and maps it persistently
// and coherently, so the CPU can write while the GPU reads. The caller must
// still fence against in-flight draws before overwriting a region.
func NewPersistentBuffer(target uint32, sizeInBytes int, read, write bool) (*BufferObject, error) {
	var id uint32
	gl.GenBuffers(1, &id)

	bo := &BufferObject{ID: id, Type: target, Size: sizeInBytes, persistent: true}

	flags := uint32(gl.MAP_PERSISTENT_BIT | gl.MAP_COHERENT_BIT)
	if read {
		flags |= gl.MAP_READ_BIT
	}
	if write {
		flags |= gl.MAP_WRITE_BIT
	}

	bo.Bind()
	gl.BufferStorage(target, sizeInBytes, nil, flags)
	bo.mapped = gl.MapBufferRange(target, 0, sizeInBytes, flags)
	if bo.mapped == nil {
		bo.Delete()
		return nil, fmt.Errorf("failed to map buffer of %d bytes", sizeInBytes)
	}
	return bo, nil
}

// MappedPointer returns the persistently mapped pointer, or nil if the
// buffer is not mapped.
func (bo *BufferObject) MappedPointer() unsafe.Pointer { return bo.mapped }

func (bo *BufferObject) Bind()   { gl.BindBuffer(bo.Type, bo.ID) }
func (bo *BufferObject) Unbind() { gl.BindBuffer(bo.Type, 0) }

// BindBase binds the buffer to an indexed target slot (SSBO, UBO).
func (bo *BufferObject) BindBase(index uint32) {
	gl.BindBufferBase(bo.Type, index, bo.ID)
}

// UpdateSubData uploads data into a byte range of the buffer.
func (bo *BufferObject) UpdateSubData(offset, size int, data unsafe.Pointer) {
	bo.Bind()
	gl.BufferSubData(bo.Type, offset, size, data)
}

// Orphan reallocates the buffer's data store so a following write does not
// stall on draws still reading the old contents.
func (bo *BufferObject) Orphan() {
	bo.Bind()
	gl.BufferData(bo.Type, bo.Size, nil, bo.Usage)
}

// UpdateIndirectCommands uploads draw commands to an indirect buffer.
func (bo *BufferObject) UpdateIndirectCommands(commands []DrawElementsIndirectCommand) error {
	if bo.Type != gl.DRAW_INDIRECT_BUFFER {
		return fmt.Errorf("buffer target 0x%x is not an indirect buffer", bo.Type)
	}
	size := len(commands) * DrawElementsIndirectCommandSize
	if size > bo.Size {
		return fmt.Errorf("%d commands exceed buffer capacity %d", len(commands), bo.Size/DrawElementsIndirectCommandSize)
	}
	if len(commands) > 0 {
		bo.Bind()
		gl.BufferSubData(gl.DRAW_INDIRECT_BUFFER, 0, size, gl.Ptr(commands))
	}
	return nil
}

// Delete unmaps (if mapped) and frees the buffer.
func (bo *BufferObject) Delete() {
	if bo.mapped != nil {
		bo.Bind()
		gl.UnmapBuffer(bo.Type)
		bo.mapped = nil
	}
	gl.DeleteBuffers(1, &bo.ID)
}

// MultiDrawElementsIndirect issues commandCount draws from the bound
// indirect buffer.
func MultiDrawElementsIndirect(mode, indexType uint32, commandCount int) {
	gl.MultiDrawElementsIndirect(mode, indexType, nil, int32(commandCount), 0)
}

// VertexArrayObject wraps a GL vertex array object.
type VertexArrayObject struct {
	ID uint32
}

func NewVAO() *VertexArrayObject {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return &VertexArrayObject{ID: id}
}

func (vao *VertexArrayObject) Bind()   { gl.BindVertexArray(vao.ID) }
func (vao *VertexArrayObject) Unbind() { gl.BindVertexArray(0) }
func (vao *VertexArrayObject) Delete() { gl.DeleteVertexArrays(1, &vao.ID) }

// SetVertexAttribPointer configures and enables a float vertex attribute.
func (vao *VertexArrayObject) SetVertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, uintptr(offset))
	gl.EnableVertexAttribArray(index)
}

// SetVertexAttribIPointer configures and enables an integer vertex
// attribute, keeping the values unconverted in the shader.
func (vao *VertexArrayObject) SetVertexAttribIPointer(index uint32, size int32, xtype uint32, stride int32, offset int) {
	gl.VertexAttribIPointerWithOffset(index, size, xtype, stride, uintptr(offset))
	gl.EnableVertexAttribArray(index)
}

// TripleBuffer cycles writes through N sections of one persistent buffer so
// the CPU never writes a region the GPU is still drawing from.
type TripleBuffer struct {
	Buffer           *BufferObject
	NumBuffers       int
	SectionSize      int
	CurrentBufferIdx int

	offsets []int
	syncs   []uintptr
}

// NewTripleBuffer creates a persistently mapped buffer split into numBuffers
// sections of sectionSizeBytes each.
func NewTripleBuffer(target uint32, sectionSizeBytes, numBuffers int) (*TripleBuffer, error) {
	if numBuffers < 2 {
		numBuffers = 3
	}
	buffer, err := NewPersistentBuffer(target, sectionSizeBytes*numBuffers, false, true)
	if err != nil {
		return nil, fmt.Errorf("triple buffer allocation: %w", err)
	}

	tb := &TripleBuffer{
		Buffer:      buffer,
		NumBuffers:  numBuffers,
		SectionSize: sectionSizeBytes,
		offsets:     make([]int, numBuffers),
		syncs:       make([]uintptr, numBuffers),
	}
	for i := range tb.offsets {
		tb.offsets[i] = i * sectionSizeBytes
	}
	return tb, nil
}

// WaitForSync blocks briefly until the GPU has finished with the current
// section. Returns false if the wait timed out.
func (tb *TripleBuffer) WaitForSync() bool {
	sync := tb.syncs[tb.CurrentBufferIdx]
	if sync == 0 {
		return true
	}
	const timeoutNs = 10_000_000
	status := gl.ClientWaitSync(sync, gl.SYNC_FLUSH_COMMANDS_BIT, timeoutNs)
	gl.DeleteSync(sync)
	tb.syncs[tb.CurrentBufferIdx] = 0
	return status == gl.ALREADY_SIGNALED || status == gl.CONDITION_SATISFIED
}

// CreateFenceSync fences the current section after its draw is submitted.
func (tb *TripleBuffer) CreateFenceSync() {
	if tb.syncs[tb.CurrentBufferIdx] != 0 {
		gl.DeleteSync(tb.syncs[tb.CurrentBufferIdx])
	}
	tb.syncs[tb.CurrentBufferIdx] = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
}

// Advance rotates to the next section.
func (tb *TripleBuffer) Advance() {
	tb.CurrentBufferIdx = (tb.CurrentBufferIdx + 1) % tb.NumBuffers
}

// CurrentOffsetBytes returns the byte offset of the section being written.
func (tb *TripleBuffer) CurrentOffsetBytes() int {
	return tb.offsets[tb.CurrentBufferIdx]
}

// Cleanup deletes the fences and the underlying buffer.
func (tb *TripleBuffer) Cleanup() {
	for i, sync := range tb.syncs {
		if sync != 0 {
			gl.DeleteSync(sync)
			tb.syncs[i] = 0
		}
	}
	if tb.Buffer != nil {
		tb.Buffer.Delete()
		tb.Buffer = nil
	}
}
