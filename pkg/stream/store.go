package stream

import (
	"fmt"
	"io"
	"log/slog"
)

// Store is a fixed-capacity circular 2D buffer holding the content of the
// cells inside the current window. The window always spans side x side cells
// where side = 2*radius+1. Two values describe the mapping from logical
// coordinates to array slots: origin, the logical coordinate of the window's
// lowest corner, and offset, the circular rotation applied on top of the
// origin subtraction. Shifting the window only rotates the offset, so cells
// that stay inside the window keep their slot contents without copying.
//
// A Store must only be accessed from the consuming goroutine.
type Store[C any] struct {
	side   int
	origin Coord
	offset Coord
	slots  []slot[C]
	count  int

	release func(C)
	onEvict func(Coord)
	log     *slog.Logger
}

type slot[C any] struct {
	content C
	full    bool
}

// NewStore creates a store for a window of the given radius whose lowest
// corner sits at origin. release is called exactly once for every piece of
// content the store lets go of; it may be nil.
func NewStore[C any](radius int, origin Coord, release func(C), log *slog.Logger) (*Store[C], error) {
	if radius < 1 {
		return nil, fmt.Errorf("window radius must be at least 1, got %d", radius)
	}
	if release == nil {
		release = func(C) {}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	side := 2*radius + 1
	return &Store[C]{
		side:    side,
		origin:  origin,
		slots:   make([]slot[C], side*side),
		release: release,
		log:     log,
	}, nil
}

// Side returns the edge length of the window in cells.
func (s *Store[C]) Side() int { return s.side }

// Origin returns the logical coordinate of the window's lowest corner.
func (s *Store[C]) Origin() Coord { return s.origin }

// Len returns the number of loaded cells.
func (s *Store[C]) Len() int { return s.count }

// Get returns the content loaded for the given cell, if any.
func (s *Store[C]) Get(c Coord) (C, bool) {
	idx, ok := s.slotIndex(c)
	if !ok || !s.slots[idx].full {
		var zero C
		return zero, false
	}
	return s.slots[idx].content, true
}

// Promote places generated content into the cell's slot, making it visible
// to the consumer. Content arriving for a cell outside the window (the
// window moved after generation started) or for a slot that is already
// occupied is released and dropped; neither case disturbs other slots.
// It reports whether the content was kept.
func (s *Store[C]) Promote(c Coord, content C) bool {
	idx, ok := s.slotIndex(c)
	if !ok {
		s.log.Debug("dropping stale cell outside window", "x", c.X, "z", c.Z)
		s.release(content)
		return false
	}
	if s.slots[idx].full {
		s.log.Warn("dropping duplicate cell", "x", c.X, "z", c.Z)
		s.release(content)
		return false
	}
	s.slots[idx] = slot[C]{content: content, full: true}
	s.count++
	return true
}

// Evict releases the content loaded for the given cell, if any.
func (s *Store[C]) Evict(c Coord) {
	idx, ok := s.slotIndex(c)
	if !ok || !s.slots[idx].full {
		return
	}
	content := s.slots[idx].content
	s.slots[idx] = slot[C]{}
	s.count--
	if s.onEvict != nil {
		s.onEvict(c)
	}
	s.release(content)
}

// Clear evicts every loaded cell.
func (s *Store[C]) Clear() {
	for i := range s.slots {
		if s.slots[i].full {
			s.Evict(s.coordAt(i))
		}
	}
}

// ShiftWindow moves the window's lowest corner to newOrigin. Cells that fall
// outside the new window are evicted; cells inside both windows keep their
// content. An incremental move touches only the rows and columns at the
// trailing edge. A jump of at least the window's own size in either axis
// evicts everything and resets the rotation offset.
func (s *Store[C]) ShiftWindow(newOrigin Coord) {
	diff := newOrigin.Sub(s.origin)
	if diff == (Coord{}) {
		return
	}
	if abs(diff.X) >= s.side || abs(diff.Z) >= s.side {
		s.Clear()
		s.origin = newOrigin
		s.offset = Coord{}
		return
	}

	// Evict the trailing columns and rows under the old mapping.
	if diff.X > 0 {
		for x := s.origin.X; x < s.origin.X+diff.X; x++ {
			s.evictColumn(x)
		}
	} else if diff.X < 0 {
		for x := s.origin.X + s.side + diff.X; x < s.origin.X+s.side; x++ {
			s.evictColumn(x)
		}
	}
	if diff.Z > 0 {
		for z := s.origin.Z; z < s.origin.Z+diff.Z; z++ {
			s.evictRow(z)
		}
	} else if diff.Z < 0 {
		for z := s.origin.Z + s.side + diff.Z; z < s.origin.Z+s.side; z++ {
			s.evictRow(z)
		}
	}

	s.origin = newOrigin
	s.offset = Coord{
		X: FloorMod(s.offset.X+diff.X, s.side),
		Z: FloorMod(s.offset.Z+diff.Z, s.side),
	}
}

func (s *Store[C]) evictColumn(x int) {
	for z := s.origin.Z; z < s.origin.Z+s.side; z++ {
		s.Evict(Coord{X: x, Z: z})
	}
}

func (s *Store[C]) evictRow(z int) {
	for x := s.origin.X; x < s.origin.X+s.side; x++ {
		s.Evict(Coord{X: x, Z: z})
	}
}

// ForEach calls fn for every loaded cell.
func (s *Store[C]) ForEach(fn func(Coord, C)) {
	for i := range s.slots {
		if s.slots[i].full {
			fn(s.coordAt(i), s.slots[i].content)
		}
	}
}
