// Package render draws the streamed terrain with modern OpenGL: one
// persistently mapped vertex buffer holding every loaded chunk, a shared
// quad index pattern and a single multi-draw indirect call per frame.
package render

import (
	"fmt"
	"io"
	"log/slog"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mkrall/go-terrain/internal/openglhelper"
	"github.com/mkrall/go-terrain/pkg/stream"
)

// quadIndexPattern builds the repeating index sequence
// [0,1,2, 0,2,3, 4,5,6, 4,6,7, ...] shared by every chunk slot. Meshes
// always emit four vertices per quad, so one static EBO serves them all.
func quadIndexPattern(maxQuads int) []uint32 {
	indices := make([]uint32, 0, maxQuads*6)
	for i := 0; i < maxQuads; i++ {
		base := uint32(i * 4)
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	return indices
}

// ChunkMeshPool owns the GPU-side storage for chunk meshes. Each loaded
// chunk occupies one fixed-size slot of the persistent vertex buffer;
// slots are recycled through an explicit free list when chunks are
// evicted. All methods must run on the render thread.
type ChunkMeshPool struct {
	maxChunks     int
	maxQuads      int
	slotSizeBytes int

	vertexBuffer   *openglhelper.BufferObject
	indexBuffer    *openglhelper.BufferObject
	indirectBuffer *openglhelper.BufferObject
	originSSBO     *openglhelper.BufferObject
	vao            *openglhelper.VertexArrayObject

	vertexPtr unsafe.Pointer
	drawFence uintptr

	slots    map[stream.Coord]int
	free     []int
	commands []openglhelper.DrawElementsIndirectCommand

	log *slog.Logger
}

// NewChunkMeshPool allocates GPU storage for up to maxChunks chunks of at
// most maxQuads quads each.
func NewChunkMeshPool(maxChunks, maxQuads int, log *slog.Logger) (*ChunkMeshPool, error) {
	if maxChunks < 1 || maxQuads < 1 {
		return nil, fmt.Errorf("invalid pool size %dx%d", maxChunks, maxQuads)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &ChunkMeshPool{
		maxChunks:     maxChunks,
		maxQuads:      maxQuads,
		slotSizeBytes: maxQuads * 4 * 4, // 4 packed uint32 vertices per quad
		slots:         make(map[stream.Coord]int, maxChunks),
		free:          make([]int, 0, maxChunks),
		commands:      make([]openglhelper.DrawElementsIndirectCommand, maxChunks),
		log:           log,
	}
	for i := maxChunks - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}

	p.vao = openglhelper.NewVAO()
	p.vao.Bind()

	var err error
	p.vertexBuffer, err = openglhelper.NewPersistentBuffer(gl.ARRAY_BUFFER, maxChunks*p.slotSizeBytes, false, true)
	if err != nil {
		p.vao.Delete()
		return nil, fmt.Errorf("chunk vertex buffer: %w", err)
	}
	p.vertexPtr = p.vertexBuffer.MappedPointer()
	p.vao.SetVertexAttribIPointer(0, 1, gl.UNSIGNED_INT, 4, 0)

	p.indexBuffer = openglhelper.NewEBO(quadIndexPattern(maxQuads), openglhelper.StaticDraw)
	p.indirectBuffer = openglhelper.NewIndirectBuffer(maxChunks, openglhelper.DynamicDraw)

	ssboSize := maxChunks * int(unsafe.Sizeof(mgl32.Vec4{}))
	p.originSSBO = openglhelper.NewBufferObject(gl.SHADER_STORAGE_BUFFER, ssboSize, nil, openglhelper.DynamicDraw)

	p.vao.Unbind()
	return p, nil
}

// Len returns the number of chunks currently resident.
func (p *ChunkMeshPool) Len() int { return len(p.slots) }

// Capacity returns the total number of chunk slots.
func (p *ChunkMeshPool) Capacity() int { return p.maxChunks }

// waitDrawFence blocks until the last submitted draw has finished reading
// the vertex buffer, so slot writes cannot race the GPU.
func (p *ChunkMeshPool) waitDrawFence() {
	if p.drawFence == 0 {
		return
	}
	const timeoutNs = 1_000_000_000
	status := gl.ClientWaitSync(p.drawFence, gl.SYNC_FLUSH_COMMANDS_BIT, timeoutNs)
	if status == gl.TIMEOUT_EXPIRED {
		p.log.Warn("draw fence wait timed out")
	}
	gl.DeleteSync(p.drawFence)
	p.drawFence = 0
}

// Upload copies a chunk mesh into a free slot and activates its draw
// command. Uploading a cell that is already resident replaces its mesh in
// place. Meshes above the per-slot quad budget are truncated.
func (p *ChunkMeshPool) Upload(cell stream.Coord, origin mgl32.Vec3, packedVertices []uint32) error {
	numQuads := len(packedVertices) / 4
	if numQuads > p.maxQuads {
		p.log.Warn("chunk mesh truncated", "x", cell.X, "z", cell.Z, "quads", numQuads, "budget", p.maxQuads)
		numQuads = p.maxQuads
		packedVertices = packedVertices[:numQuads*4]
	}

	slot, exists := p.slots[cell]
	if !exists {
		if len(p.free) == 0 {
			return fmt.Errorf("chunk pool full: %d slots in use", p.maxChunks)
		}
		slot = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.slots[cell] = slot
	}

	p.waitDrawFence()

	if len(packedVertices) > 0 {
		offset := slot * p.slotSizeBytes
		dst := unsafe.Slice((*uint32)(unsafe.Pointer(uintptr(p.vertexPtr)+uintptr(offset))), len(packedVertices))
		copy(dst, packedVertices)
	}

	p.commands[slot] = openglhelper.DrawElementsIndirectCommand{
		Count:         uint32(numQuads * 6),
		InstanceCount: 1,
		FirstIndex:    0,
		BaseVertex:    int32(slot * p.maxQuads * 4),
		BaseInstance:  uint32(slot),
	}
	if err := p.indirectBuffer.UpdateIndirectCommands(p.commands); err != nil {
		return fmt.Errorf("indirect commands: %w", err)
	}

	pos := mgl32.Vec4{origin.X(), origin.Y(), origin.Z(), 1}
	p.originSSBO.UpdateSubData(slot*int(unsafe.Sizeof(pos)), int(unsafe.Sizeof(pos)), unsafe.Pointer(&pos[0]))
	return nil
}

// Remove frees the slot of an evicted cell. Removing a cell that is not
// resident is a no-op.
func (p *ChunkMeshPool) Remove(cell stream.Coord) {
	slot, exists := p.slots[cell]
	if !exists {
		return
	}
	delete(p.slots, cell)
	p.free = append(p.free, slot)

	p.waitDrawFence()
	p.commands[slot].InstanceCount = 0
	p.commands[slot].Count = 0
	if err := p.indirectBuffer.UpdateIndirectCommands(p.commands); err != nil {
		p.log.Error("disabling draw command", "err", err)
	}
}

// Draw renders every resident chunk with one multi-draw indirect call and
// fences the vertex buffer behind it.
func (p *ChunkMeshPool) Draw() {
	p.vao.Bind()
	p.vertexBuffer.Bind()
	p.indexBuffer.Bind()
	p.indirectBuffer.Bind()
	p.originSSBO.BindBase(0)

	openglhelper.MultiDrawElementsIndirect(gl.TRIANGLES, gl.UNSIGNED_INT, len(p.commands))

	if p.drawFence != 0 {
		gl.DeleteSync(p.drawFence)
	}
	p.drawFence = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	p.vao.Unbind()
}

// Cleanup releases all GPU resources held by the pool.
func (p *ChunkMeshPool) Cleanup() {
	if p.drawFence != 0 {
		gl.DeleteSync(p.drawFence)
		p.drawFence = 0
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Delete()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Delete()
		p.indexBuffer = nil
	}
	if p.indirectBuffer != nil {
		p.indirectBuffer.Delete()
		p.indirectBuffer = nil
	}
	if p.originSSBO != nil {
		p.originSSBO.Delete()
		p.originSSBO = nil
	}
	if p.vao != nil {
		p.vao.Delete()
		p.vao = nil
	}
}
