// Package stream keeps a bounded sliding window of procedurally generated
// grid cells loaded around a moving viewpoint. Generation runs on a single
// background goroutine and finished cells are handed back to the consuming
// goroutine through a non-blocking queue.
package stream

// Coord identifies a cell in the infinite logical grid.
type Coord struct {
	X, Z int
}

// Add returns the component-wise sum of c and o.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Z: c.Z + o.Z}
}

// Sub returns the component-wise difference of c and o.
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Z: c.Z - o.Z}
}

// Dist2 returns the squared Euclidean distance between c and o.
func (c Coord) Dist2(o Coord) int {
	dx := c.X - o.X
	dz := c.Z - o.Z
	return dx*dx + dz*dz
}

// FloorDiv divides a by b rounding towards negative infinity. b must be
// positive.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// FloorMod returns a mod b with the sign of b, so negative values wrap into
// [0, b) for positive b.
func FloorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
