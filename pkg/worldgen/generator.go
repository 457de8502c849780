// Package worldgen produces deterministic terrain chunks from a seed. The
// same seed and cell always yield the same blocks, so regenerating an
// evicted cell restores it exactly.
package worldgen

import (
	"io"
	"log/slog"

	"github.com/mkrall/go-terrain/pkg/stream"
	"github.com/mkrall/go-terrain/pkg/voxel"
)

// Terrain shaping parameters. Heights are sampled at region corners and
// interpolated across each region, which gives smooth slopes without a
// noise library.
const (
	regionSize = 32 // in blocks, spanning two chunks
	seaLevel   = 10
	minHeight  = 4
	maxHeight  = voxel.ChunkSizeY - 4
	snowLine   = 24
)

// Biome selects the surface materials of a region.
type Biome int

const (
	BiomePlains Biome = iota
	BiomeForest
	BiomeDesert
	BiomeMountain
)

// Generator builds terrain chunks for grid cells. It is stateless apart
// from the seed and safe for reuse across streamer restarts.
type Generator struct {
	seed int64
	log  *slog.Logger
}

// New creates a generator for the given world seed.
func New(seed int64, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{seed: seed, log: log}
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9))
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9))
}

// cornerHeight returns the terrain height anchored at a region corner.
func (g *Generator) cornerHeight(rx, rz int) int {
	h := hash2(g.seed, rx, rz)
	return minHeight + int(h%uint64(maxHeight-minHeight+1))
}

// HeightAt returns the terrain surface height at a world column,
// bilinearly interpolated between the four surrounding region corners.
func (g *Generator) HeightAt(wx, wz int) int {
	rx := stream.FloorDiv(wx, regionSize)
	rz := stream.FloorDiv(wz, regionSize)
	fx := stream.FloorMod(wx, regionSize)
	fz := stream.FloorMod(wz, regionSize)

	h00 := g.cornerHeight(rx, rz)
	h10 := g.cornerHeight(rx+1, rz)
	h01 := g.cornerHeight(rx, rz+1)
	h11 := g.cornerHeight(rx+1, rz+1)

	// Fixed-point bilinear interpolation, truncated toward zero.
	top := h00*(regionSize-fx) + h10*fx
	bot := h01*(regionSize-fx) + h11*fx
	return (top*(regionSize-fz) + bot*fz) / (regionSize * regionSize)
}

// BiomeAt returns the biome of the region containing a world column.
func (g *Generator) BiomeAt(wx, wz int) Biome {
	rx := stream.FloorDiv(wx, regionSize)
	rz := stream.FloorDiv(wz, regionSize)
	return Biome(hash2(g.seed^0x5eed, rx, rz) % 4)
}

// surfaceBlock picks the top-of-column material.
func surfaceBlock(biome Biome, height int) voxel.BlockType {
	if height >= snowLine {
		return voxel.Snow
	}
	if height <= seaLevel+1 {
		return voxel.Sand
	}
	switch biome {
	case BiomeDesert:
		return voxel.Sand
	case BiomeMountain:
		return voxel.Stone
	default:
		return voxel.Grass
	}
}

// Generate builds the chunk for a grid cell. It never fails; the error
// return satisfies the streaming generator contract.
func (g *Generator) Generate(cell stream.Coord) (*voxel.Chunk, error) {
	c := voxel.NewChunk(cell.X, cell.Z)

	baseX := cell.X * voxel.ChunkSizeX
	baseZ := cell.Z * voxel.ChunkSizeZ
	for z := 0; z < voxel.ChunkSizeZ; z++ {
		for x := 0; x < voxel.ChunkSizeX; x++ {
			wx, wz := baseX+x, baseZ+z
			height := g.HeightAt(wx, wz)
			biome := g.BiomeAt(wx, wz)
			g.fillColumn(c, x, z, wx, wz, height, biome)
		}
	}

	g.log.Debug("generated chunk", "x", cell.X, "z", cell.Z)
	return c, nil
}

func (g *Generator) fillColumn(c *voxel.Chunk, x, z, wx, wz, height int, biome Biome) {
	for y := 0; y < height; y++ {
		switch {
		case y >= height-1:
			c.Set(x, y, z, surfaceBlock(biome, height))
		case y >= height-4:
			if biome == BiomeDesert {
				c.Set(x, y, z, voxel.Sand)
			} else {
				c.Set(x, y, z, voxel.Dirt)
			}
		default:
			// Occasional gravel pockets inside the stone.
			if hash3(g.seed^0x6a7e, wx, y, wz)%97 == 0 {
				c.Set(x, y, z, voxel.Gravel)
			} else {
				c.Set(x, y, z, voxel.Stone)
			}
		}
	}
	// Flood everything below sea level.
	for y := height; y < seaLevel; y++ {
		c.Set(x, y, z, voxel.Water)
	}
}
