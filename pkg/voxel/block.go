// Package voxel models one streamed terrain cell: a small block volume at a
// grid coordinate together with the packed mesh built from it.
package voxel

// BlockType identifies the material of a single voxel.
type BlockType uint8

const (
	Air BlockType = iota
	Grass
	Dirt
	Stone
	Sand
	Snow
	Water
	Gravel

	// NumBlockTypes is the size of the palette; the terrain shader indexes
	// its color table with the packed block bits.
	NumBlockTypes
)

// BlockProperties contains the physical properties of a block type.
type BlockProperties struct {
	Solid       bool
	Transparent bool
}

var blockProperties = map[BlockType]BlockProperties{
	Air:    {Solid: false, Transparent: true},
	Grass:  {Solid: true, Transparent: false},
	Dirt:   {Solid: true, Transparent: false},
	Stone:  {Solid: true, Transparent: false},
	Sand:   {Solid: true, Transparent: false},
	Snow:   {Solid: true, Transparent: false},
	Water:  {Solid: true, Transparent: true},
	Gravel: {Solid: true, Transparent: false},
}

// Properties returns the properties for a block type, defaulting to an
// opaque solid for unknown values.
func Properties(b BlockType) BlockProperties {
	props, ok := blockProperties[b]
	if !ok {
		return BlockProperties{Solid: true, Transparent: false}
	}
	return props
}

// IsSolid reports whether the block occupies space.
func (b BlockType) IsSolid() bool { return Properties(b).Solid }

// IsTransparent reports whether faces behind the block stay visible.
func (b BlockType) IsTransparent() bool { return Properties(b).Transparent }
