package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Chunk dimensions in blocks. Cells tile the XZ plane; Y is vertical.
const (
	ChunkSizeX = 16
	ChunkSizeY = 32
	ChunkSizeZ = 16
)

// Chunk is the content of one streamed grid cell.
type Chunk struct {
	// X, Z is the cell's grid coordinate (not a world position).
	X, Z int
	// Blocks holds ChunkSizeX*ChunkSizeY*ChunkSizeZ voxels, x fastest,
	// then z, then y.
	Blocks []BlockType
	// Mesh is the packed render mesh, built once after generation.
	Mesh *Mesh
}

// NewChunk creates an empty (all Air) chunk for the given cell.
func NewChunk(x, z int) *Chunk {
	return &Chunk{
		X:      x,
		Z:      z,
		Blocks: make([]BlockType, ChunkSizeX*ChunkSizeY*ChunkSizeZ),
	}
}

func (c *Chunk) index(x, y, z int) int {
	return (y*ChunkSizeZ+z)*ChunkSizeX + x
}

func inBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < ChunkSizeX && y < ChunkSizeY && z < ChunkSizeZ
}

// Get returns the block at local coordinates, or Air outside the chunk.
func (c *Chunk) Get(x, y, z int) BlockType {
	if !inBounds(x, y, z) {
		return Air
	}
	return c.Blocks[c.index(x, y, z)]
}

// Set writes the block at local coordinates, ignoring out-of-bounds writes.
func (c *Chunk) Set(x, y, z int, b BlockType) {
	if !inBounds(x, y, z) {
		return
	}
	c.Blocks[c.index(x, y, z)] = b
}

// WorldOrigin returns the world-space position of the chunk's lowest corner.
func (c *Chunk) WorldOrigin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * ChunkSizeX),
		0,
		float32(c.Z * ChunkSizeZ),
	}
}

// BuildMesh builds and stores the packed render mesh. Safe to call off the
// render thread; it touches no GL state.
func (c *Chunk) BuildMesh() *Mesh {
	c.Mesh = BuildMesh(c)
	return c.Mesh
}

// Release drops the block and mesh data so the backing arrays can be
// collected once the renderer has removed the chunk from the GPU.
func (c *Chunk) Release() {
	c.Blocks = nil
	c.Mesh = nil
}
