package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The two mapping directions must be exact inverses for every array slot and
// every in-window logical coordinate, for any origin and rotation offset.
func TestSlotMappingBijection(t *testing.T) {
	origins := []Coord{{}, {X: 5, Z: -5}, {X: -7, Z: 3}, {X: -100, Z: -100}}
	for _, origin := range origins {
		s, err := NewStore[int](2, origin, nil, nil)
		require.NoError(t, err)

		for ox := 0; ox < s.side; ox++ {
			for oz := 0; oz < s.side; oz++ {
				s.offset = Coord{X: ox, Z: oz}

				for idx := 0; idx < s.side*s.side; idx++ {
					c := s.coordAt(idx)
					back, ok := s.slotIndex(c)
					require.True(t, ok, "coordAt(%d) = %v maps outside the window", idx, c)
					require.Equal(t, idx, back, "origin=%v offset=%v", origin, s.offset)
				}

				for x := origin.X; x < origin.X+s.side; x++ {
					for z := origin.Z; z < origin.Z+s.side; z++ {
						c := Coord{X: x, Z: z}
						idx, ok := s.slotIndex(c)
						require.True(t, ok)
						require.Equal(t, c, s.coordAt(idx))
					}
				}
			}
		}
	}
}

func TestSlotIndexOutsideWindow(t *testing.T) {
	s, err := NewStore[int](1, Coord{}, nil, nil)
	require.NoError(t, err)

	for _, c := range []Coord{{X: -1, Z: 0}, {X: 0, Z: -1}, {X: 3, Z: 0}, {X: 0, Z: 3}, {X: 100, Z: 100}} {
		_, ok := s.slotIndex(c)
		require.False(t, ok, "coord %v should be outside a 3x3 window at origin (0,0)", c)
	}
}
