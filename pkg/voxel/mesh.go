package voxel

// Face identifies one of the six cube faces.
type Face int

const (
	FaceEast  Face = iota // +X
	FaceWest              // -X
	FaceUp                // +Y
	FaceDown              // -Y
	FaceSouth             // +Z
	FaceNorth             // -Z
)

// Normal returns the outward unit normal of the face as integer offsets.
func (f Face) Normal() (dx, dy, dz int) {
	switch f {
	case FaceEast:
		return 1, 0, 0
	case FaceWest:
		return -1, 0, 0
	case FaceUp:
		return 0, 1, 0
	case FaceDown:
		return 0, -1, 0
	case FaceSouth:
		return 0, 0, 1
	case FaceNorth:
		return 0, 0, -1
	default:
		return 0, 0, 0
	}
}

// PackVertex packs one corner of a quad into a uint32:
//
//	bbbbbbbb fff zzzzz yyyyyy xxxxx
//
// x: 5 bits (0-31), y: 6 bits (0-63), z: 5 bits (0-31),
// f: face (3 bits), b: block type (8 bits). Corner positions range over
// 0..size inclusive, which fits because the chunk is 16x32x16.
func PackVertex(x, y, z int, face Face, block BlockType) uint32 {
	return uint32(x&31) |
		uint32(y&63)<<5 |
		uint32(z&31)<<11 |
		uint32(face&7)<<16 |
		uint32(block)<<19
}

// UnpackVertex is the inverse of PackVertex.
func UnpackVertex(v uint32) (x, y, z int, face Face, block BlockType) {
	x = int(v & 31)
	y = int(v >> 5 & 63)
	z = int(v >> 11 & 31)
	face = Face(v >> 16 & 7)
	block = BlockType(v >> 19 & 255)
	return
}

// Mesh is the packed render mesh of one chunk: four vertices per visible
// quad, ordered to match the shared quad index pattern.
type Mesh struct {
	PackedVertices []uint32
}

// QuadCount returns the number of quads in the mesh.
func (m *Mesh) QuadCount() int { return len(m.PackedVertices) / 4 }

// faceCorners lists the four corner offsets of each face in counter-clockwise
// winding as seen from outside the block.
var faceCorners = [6][4][3]int{
	FaceEast:  {{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}},
	FaceWest:  {{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}},
	FaceUp:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}},
	FaceDown:  {{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}},
	FaceSouth: {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	FaceNorth: {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
}

// faceVisible reports whether a face of block b is visible against its
// neighbor n. Faces between two water blocks are hidden so the sea surface
// renders as a single sheet.
func faceVisible(b, n BlockType) bool {
	if n == Air {
		return true
	}
	if b == Water && n == Water {
		return false
	}
	return n.IsTransparent()
}

// BuildMesh builds the packed mesh for a chunk by emitting one quad per
// block face that borders air or a transparent block. Neighboring chunks
// are not consulted; faces on the chunk boundary are always emitted.
func BuildMesh(c *Chunk) *Mesh {
	mesh := &Mesh{}
	for y := 0; y < ChunkSizeY; y++ {
		for z := 0; z < ChunkSizeZ; z++ {
			for x := 0; x < ChunkSizeX; x++ {
				b := c.Get(x, y, z)
				if b == Air {
					continue
				}
				for face := FaceEast; face <= FaceNorth; face++ {
					dx, dy, dz := face.Normal()
					if !faceVisible(b, c.Get(x+dx, y+dy, z+dz)) {
						continue
					}
					for _, corner := range faceCorners[face] {
						mesh.PackedVertices = append(mesh.PackedVertices,
							PackVertex(x+corner[0], y+corner[1], z+corner[2], face, b))
					}
				}
			}
		}
	}
	return mesh
}
