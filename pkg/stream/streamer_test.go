package stream

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cellData is the content type used by streamer tests; each generation
// produces a fresh pointer so identity checks catch regeneration.
type cellData struct {
	cell Coord
}

// recordingGen records the order cells are generated in and can be told to
// fail for specific cells.
type recordingGen struct {
	mu    sync.Mutex
	order []Coord
	fail  map[Coord]bool
}

func (g *recordingGen) Generate(cell Coord) (*cellData, error) {
	g.mu.Lock()
	g.order = append(g.order, cell)
	failing := g.fail[cell]
	g.mu.Unlock()
	if failing {
		return nil, fmt.Errorf("no data for cell (%d,%d)", cell.X, cell.Z)
	}
	return &cellData{cell: cell}, nil
}

func (g *recordingGen) generated() []Coord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Coord(nil), g.order...)
}

// disc returns the cells within Euclidean distance r of center.
func disc(center Coord, r int) map[Coord]bool {
	cells := make(map[Coord]bool)
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dz*dz <= r*r {
				cells[Coord{X: center.X + dx, Z: center.Z + dz}] = true
			}
		}
	}
	return cells
}

// settle ticks until the streamer is idle and everything generated has been
// drained from the handoff queue.
func settle(t *testing.T, s *Streamer[*cellData], wantLoaded int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.Tick()
		return s.Idle() && s.Loaded() == wantLoaded
	}, 5*time.Second, time.Millisecond)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config[*cellData]{Radius: 0, Generator: &recordingGen{}})
	require.Error(t, err)

	_, err = New(Config[*cellData]{Radius: 2})
	require.Error(t, err)
}

// The initial fill loads exactly the disc of radius R: 13 cells for R=2,
// never the corner cells of the square window.
func TestInitialFillLoadsDisc(t *testing.T) {
	gen := &recordingGen{}
	s, err := New(Config[*cellData]{Radius: 2, Center: Coord{}, Generator: gen})
	require.NoError(t, err)
	defer s.Close()

	want := disc(Coord{}, 2)
	require.Len(t, want, 13)
	settle(t, s, 13)

	for z := -2; z <= 2; z++ {
		for x := -2; x <= 2; x++ {
			c := Coord{X: x, Z: z}
			_, ok := s.Get(c)
			assert.Equal(t, want[c], ok, "cell %v", c)
		}
	}
	_, ok := s.Get(Coord{X: 3, Z: 0})
	assert.False(t, ok)
}

// Cells are generated nearest-to-center first.
func TestGenerationOrderNearestFirst(t *testing.T) {
	gen := &recordingGen{}
	center := Coord{X: 7, Z: -3}
	s, err := New(Config[*cellData]{Radius: 3, Center: center, Generator: gen})
	require.NoError(t, err)
	defer s.Close()

	settle(t, s, len(disc(center, 3)))

	order := gen.generated()
	require.NotEmpty(t, order)
	require.Equal(t, center, order[0], "the center cell is generated first")
	for i := 1; i < len(order); i++ {
		require.LessOrEqual(t, order[i-1].Dist2(center), order[i].Dist2(center),
			"cell %v generated before the closer %v", order[i-1], order[i])
	}
}

// Moving the center keeps the overlap loaded with identical content objects,
// evicts cells that left the disc and generates only the newly exposed ones.
func TestSetCenterKeepsOverlap(t *testing.T) {
	gen := &recordingGen{}
	var evicted []Coord
	s, err := New(Config[*cellData]{
		Radius:    2,
		Center:    Coord{},
		Generator: gen,
		OnEvict:   func(c Coord) { evicted = append(evicted, c) },
	})
	require.NoError(t, err)
	defer s.Close()
	settle(t, s, 13)

	before := make(map[Coord]*cellData)
	s.ForEach(func(c Coord, d *cellData) { before[c] = d })

	s.SetCenter(Coord{X: 1, Z: 0})
	settle(t, s, 13)

	wantEvicted := []Coord{{X: -2, Z: 0}, {X: -1, Z: -1}, {X: -1, Z: 1}, {X: 0, Z: -2}, {X: 0, Z: 2}}
	assert.ElementsMatch(t, wantEvicted, evicted)

	for c := range disc(Coord{X: 1, Z: 0}, 2) {
		got, ok := s.Get(c)
		require.True(t, ok, "cell %v", c)
		if old, wasLoaded := before[c]; wasLoaded {
			assert.Same(t, old, got, "cell %v must not be regenerated", c)
		}
	}

	// Only the newly exposed cells were generated a second time around.
	counts := make(map[Coord]int)
	for _, c := range gen.generated() {
		counts[c]++
	}
	for c, n := range counts {
		assert.Equal(t, 1, n, "cell %v generated %d times", c, n)
	}
}

// SetCenter with the current center must not reset anything.
func TestSetCenterUnchangedIsNoop(t *testing.T) {
	gen := &recordingGen{}
	s, err := New(Config[*cellData]{Radius: 2, Center: Coord{}, Generator: gen})
	require.NoError(t, err)
	defer s.Close()
	settle(t, s, 13)

	generated := len(gen.generated())
	s.SetCenter(Coord{})
	s.Tick()
	require.True(t, s.Idle())
	require.Equal(t, generated, len(gen.generated()))
}

// A result finishing after the window teleported away is released, not
// promoted, and does not disturb the new window.
func TestStaleResultDropped(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	started := map[Coord]bool{}
	gen := GeneratorFunc[*cellData](func(cell Coord) (*cellData, error) {
		mu.Lock()
		started[cell] = true
		mu.Unlock()
		<-release
		return &cellData{cell: cell}, nil
	})

	released := 0
	s, err := New(Config[*cellData]{
		Radius:    1,
		Center:    Coord{},
		Generator: gen,
		Release:   func(*cellData) { released++ },
	})
	require.NoError(t, err)

	// Wait for the worker to be inside a generation, then teleport.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(started) > 0
	}, 5*time.Second, time.Millisecond)
	s.SetCenter(Coord{X: 100, Z: 100})
	close(release)

	settle(t, s, 5)
	for c := range disc(Coord{X: 100, Z: 100}, 1) {
		_, ok := s.Get(c)
		require.True(t, ok, "cell %v", c)
	}
	_, ok := s.Get(Coord{})
	require.False(t, ok, "the stale origin cell must not be promoted")
	require.GreaterOrEqual(t, released, 1, "the stale result must be released")

	s.Close()
}

// A failing cell is logged and skipped; the rest of the disc still loads and
// the worker parks normally.
func TestGeneratorFailureSkipsCell(t *testing.T) {
	bad := Coord{X: 1, Z: 0}
	gen := &recordingGen{fail: map[Coord]bool{bad: true}}
	s, err := New(Config[*cellData]{Radius: 2, Center: Coord{}, Generator: gen})
	require.NoError(t, err)
	defer s.Close()

	settle(t, s, 12)
	_, ok := s.Get(bad)
	require.False(t, ok)

	// Moving away and back re-queues the failed cell.
	s.SetCenter(Coord{X: 100, Z: 100})
	gen.mu.Lock()
	gen.fail = nil
	gen.mu.Unlock()
	s.SetCenter(Coord{})
	settle(t, s, 13)
	_, ok = s.Get(bad)
	require.True(t, ok)
}

// The worker parks when the pending list empties and a later SetCenter
// starts a fresh one.
func TestWorkerRestartsAfterIdle(t *testing.T) {
	gen := &recordingGen{}
	s, err := New(Config[*cellData]{Radius: 2, Center: Coord{}, Generator: gen})
	require.NoError(t, err)
	defer s.Close()
	settle(t, s, 13)
	require.True(t, s.Idle())

	s.SetCenter(Coord{X: 50, Z: 50})
	settle(t, s, 13)
	for c := range disc(Coord{X: 50, Z: 50}, 2) {
		_, ok := s.Get(c)
		require.True(t, ok, "cell %v", c)
	}
}

// Close waits for the worker, releases undelivered results and evicts all
// loaded cells; every generated content object is released exactly once or
// still owned by the caller via OnPromote (which Close also evicts).
func TestCloseReleasesEverything(t *testing.T) {
	gen := &recordingGen{}
	released := 0
	s, err := New(Config[*cellData]{
		Radius:    3,
		Center:    Coord{},
		Generator: gen,
		Release:   func(*cellData) { released++ },
	})
	require.NoError(t, err)

	// Close mid-flight: some results promoted, some still queued.
	time.Sleep(time.Millisecond)
	s.Tick()
	s.Close()

	require.Equal(t, len(gen.generated()), released)
	require.Equal(t, 0, s.Loaded())

	// Close is idempotent.
	s.Close()
}
