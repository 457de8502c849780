package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, radius int, origin Coord) (*Store[*int], *int) {
	t.Helper()
	released := 0
	s, err := NewStore[*int](radius, origin, func(*int) { released++ }, nil)
	require.NoError(t, err)
	// The counter escapes via closure; hand the caller a stable pointer.
	return s, &released
}

func fillWindow(t *testing.T, s *Store[*int]) map[Coord]*int {
	t.Helper()
	contents := make(map[Coord]*int)
	origin := s.Origin()
	for z := origin.Z; z < origin.Z+s.Side(); z++ {
		for x := origin.X; x < origin.X+s.Side(); x++ {
			c := Coord{X: x, Z: z}
			v := new(int)
			require.True(t, s.Promote(c, v))
			contents[c] = v
		}
	}
	return contents
}

func TestStoreRejectsInvalidRadius(t *testing.T) {
	_, err := NewStore[int](0, Coord{}, nil, nil)
	require.Error(t, err)
	_, err = NewStore[int](-3, Coord{}, nil, nil)
	require.Error(t, err)
}

func TestStoreGetPromoteEvict(t *testing.T) {
	s, released := newTestStore(t, 1, Coord{X: -1, Z: -1})

	c := Coord{X: 0, Z: 0}
	_, ok := s.Get(c)
	require.False(t, ok)

	v := new(int)
	require.True(t, s.Promote(c, v))
	got, ok := s.Get(c)
	require.True(t, ok)
	require.Same(t, v, got)
	require.Equal(t, 1, s.Len())

	s.Evict(c)
	_, ok = s.Get(c)
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
	require.Equal(t, 1, *released)

	// Evicting an empty or out-of-window cell is a no-op.
	s.Evict(c)
	s.Evict(Coord{X: 50, Z: 50})
	require.Equal(t, 1, *released)
}

// A small shift must keep every cell that is inside both the old and the new
// window, without copying or regenerating.
func TestShiftWindowKeepsOverlap(t *testing.T) {
	s, released := newTestStore(t, 2, Coord{X: -2, Z: -2})
	contents := fillWindow(t, s)

	s.ShiftWindow(Coord{X: -1, Z: -2})

	require.Equal(t, 5, *released, "one trailing column of 5 cells should be evicted")
	require.Equal(t, 20, s.Len())
	for c, v := range contents {
		got, ok := s.Get(c)
		if c.X == -2 {
			assert.False(t, ok, "cell %v left the window", c)
			continue
		}
		require.True(t, ok, "cell %v should survive the shift", c)
		assert.Same(t, v, got, "cell %v must keep its content object", c)
	}
}

func TestShiftWindowDiagonal(t *testing.T) {
	s, released := newTestStore(t, 2, Coord{X: 0, Z: 0})
	contents := fillWindow(t, s)

	// Move down-left: trailing edges are the high column and the high rows.
	s.ShiftWindow(Coord{X: -1, Z: -2})

	// One column and two rows leave the window; the corner overlap between
	// them must be disposed exactly once.
	wantEvicted := 5 + 2*5 - 2
	require.Equal(t, wantEvicted, *released)
	require.Equal(t, 25-wantEvicted, s.Len())

	for c, v := range contents {
		got, ok := s.Get(c)
		if c.X == 4 || c.Z >= 3 {
			assert.False(t, ok, "cell %v left the window", c)
			continue
		}
		require.True(t, ok, "cell %v should survive", c)
		assert.Same(t, v, got)
	}
}

// Jumping at least a full window size in either axis evicts everything and
// resets the rotation offset.
func TestShiftWindowTeleport(t *testing.T) {
	s, released := newTestStore(t, 2, Coord{X: 0, Z: 0})
	s.ShiftWindow(Coord{X: 2, Z: 1}) // accumulate a non-zero offset first
	fillWindow(t, s)

	s.ShiftWindow(Coord{X: 100, Z: 100})

	require.Equal(t, 25, *released)
	require.Equal(t, 0, s.Len())
	require.Equal(t, Coord{}, s.offset)
	require.Equal(t, Coord{X: 100, Z: 100}, s.origin)

	// The store keeps working at the new position.
	v := new(int)
	require.True(t, s.Promote(Coord{X: 102, Z: 102}, v))
	got, ok := s.Get(Coord{X: 102, Z: 102})
	require.True(t, ok)
	require.Same(t, v, got)
}

func TestShiftWindowAccumulatedWrap(t *testing.T) {
	s, _ := newTestStore(t, 2, Coord{X: 0, Z: 0})

	// Many small shifts in the same direction exercise offset wraparound.
	for i := 1; i <= 12; i++ {
		s.ShiftWindow(Coord{X: i, Z: -i})
	}

	contents := fillWindow(t, s)
	for c, v := range contents {
		got, ok := s.Get(c)
		require.True(t, ok)
		require.Same(t, v, got)
	}
}

// Stale and duplicate promotions are dropped without corrupting other slots.
func TestPromoteStaleAndDuplicate(t *testing.T) {
	s, released := newTestStore(t, 1, Coord{X: 0, Z: 0})

	kept := new(int)
	require.True(t, s.Promote(Coord{X: 1, Z: 1}, kept))

	// Out of window: released, not stored.
	stale := new(int)
	require.False(t, s.Promote(Coord{X: 10, Z: 0}, stale))
	require.Equal(t, 1, *released)

	// Duplicate: the incoming content is released, the original stays.
	dup := new(int)
	require.False(t, s.Promote(Coord{X: 1, Z: 1}, dup))
	require.Equal(t, 2, *released)

	got, ok := s.Get(Coord{X: 1, Z: 1})
	require.True(t, ok)
	require.Same(t, kept, got)
	require.Equal(t, 1, s.Len())
}

func TestForEachVisitsLoadedCells(t *testing.T) {
	s, _ := newTestStore(t, 1, Coord{X: -1, Z: -1})
	want := map[Coord]bool{
		{X: 0, Z: 0}:  true,
		{X: -1, Z: 1}: true,
		{X: 1, Z: -1}: true,
	}
	for c := range want {
		require.True(t, s.Promote(c, new(int)))
	}

	seen := map[Coord]bool{}
	s.ForEach(func(c Coord, _ *int) { seen[c] = true })
	require.Equal(t, want, seen)
}
