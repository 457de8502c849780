package stream

// slotIndex maps a logical coordinate to its slot in the circular array.
// It reports false for coordinates outside the current window.
func (s *Store[C]) slotIndex(c Coord) (int, bool) {
	dx := c.X - s.origin.X
	dz := c.Z - s.origin.Z
	if dx < 0 || dz < 0 || dx >= s.side || dz >= s.side {
		return 0, false
	}
	ax := FloorMod(dx+s.offset.X, s.side)
	az := FloorMod(dz+s.offset.Z, s.side)
	return az*s.side + ax, true
}

// coordAt is the inverse of slotIndex: it returns the logical coordinate
// currently mapped to the given array slot.
func (s *Store[C]) coordAt(idx int) Coord {
	ax := idx % s.side
	az := idx / s.side
	return Coord{
		X: FloorMod(ax-s.offset.X, s.side) + s.origin.X,
		Z: FloorMod(az-s.offset.Z, s.side) + s.origin.Z,
	}
}
