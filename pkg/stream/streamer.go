package stream

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// Generator produces the content for a single grid cell. It is called from
// the streamer's worker goroutine only, may be slow, and must not touch any
// streamer or store state.
type Generator[C any] interface {
	Generate(cell Coord) (C, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc[C any] func(Coord) (C, error)

// Generate calls f.
func (f GeneratorFunc[C]) Generate(cell Coord) (C, error) { return f(cell) }

// Config describes a Streamer. Radius, Center and Generator are required;
// everything else is optional.
type Config[C any] struct {
	// Radius is the streaming radius in cells. The window spans
	// (2*Radius+1)^2 slots and cells within Euclidean distance Radius of
	// the center are kept loaded. Fixed for the streamer's lifetime.
	Radius int

	// Center is the initial center cell.
	Center Coord

	// Generator computes cell content on the worker goroutine.
	Generator Generator[C]

	// Release frees a piece of content the streamer lets go of (evicted,
	// stale or duplicate). Called on the consuming goroutine.
	Release func(C)

	// OnPromote is called on the consuming goroutine whenever generated
	// content becomes visible, after it has been placed in the store.
	OnPromote func(Coord, C)

	// OnEvict is called on the consuming goroutine whenever a loaded cell
	// is released, before its content is freed.
	OnEvict func(Coord)

	Logger *slog.Logger
	Trace  TraceSink
}

// Streamer keeps the cells around a moving center generated and loaded.
// SetCenter, Tick and Close must all be called from the same consuming
// goroutine; the streamer runs at most one background worker at a time.
type Streamer[C any] struct {
	radius  int
	center  Coord
	store   *Store[C]
	gen     Generator[C]
	release func(C)
	promote func(Coord, C)
	log     *slog.Logger
	trace   TraceSink

	// mu guards pending and running. It is held only for list mutation,
	// never while generating.
	mu      sync.Mutex
	pending []Coord // sorted farthest-first; the worker pops from the end
	running bool
	closed  bool
	wg      sync.WaitGroup

	resultsIn  chan<- result[C]
	resultsOut <-chan result[C]
}

type result[C any] struct {
	cell    Coord
	content C
}

// New creates a Streamer, fills the initial window and starts generating.
func New[C any](cfg Config[C]) (*Streamer[C], error) {
	if cfg.Radius < 1 {
		return nil, fmt.Errorf("streaming radius must be at least 1, got %d", cfg.Radius)
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("streamer needs a generator")
	}
	release := cfg.Release
	if release == nil {
		release = func(C) {}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Streamer[C]{
		radius:  cfg.Radius,
		center:  cfg.Center,
		gen:     cfg.Generator,
		release: release,
		promote: cfg.OnPromote,
		log:     log,
		trace:   cfg.Trace,
	}

	origin := Coord{X: cfg.Center.X - cfg.Radius, Z: cfg.Center.Z - cfg.Radius}
	store, err := NewStore[C](cfg.Radius, origin, release, log)
	if err != nil {
		return nil, err
	}
	// The evict hook fires for cells leaving the store, but not for
	// dropped duplicates or stale results.
	store.onEvict = func(c Coord) {
		s.event(TraceEvict, c)
		if cfg.OnEvict != nil {
			cfg.OnEvict(c)
		}
	}
	s.store = store
	s.resultsIn, s.resultsOut = unbounded[result[C]]()

	s.rebuild()
	return s, nil
}

// Radius returns the streaming radius.
func (s *Streamer[C]) Radius() int { return s.radius }

// Center returns the current center cell.
func (s *Streamer[C]) Center() Coord { return s.center }

// Get returns the loaded content for a cell, if any.
func (s *Streamer[C]) Get(c Coord) (C, bool) { return s.store.Get(c) }

// Loaded returns the number of loaded cells.
func (s *Streamer[C]) Loaded() int { return s.store.Len() }

// ForEach calls fn for every loaded cell. The renderer uses this to draw
// all currently loaded cells once per frame.
func (s *Streamer[C]) ForEach(fn func(Coord, C)) { s.store.ForEach(fn) }

// SetCenter repositions the window around a new center cell. Cells that
// fall out of the streaming disc are evicted, missing cells inside it are
// queued for generation nearest-first, and the worker is started if it is
// not already running. A call with the current center is a no-op.
func (s *Streamer[C]) SetCenter(c Coord) {
	if c == s.center {
		return
	}
	s.center = c
	s.event(TraceShift, c)
	s.store.ShiftWindow(Coord{X: c.X - s.radius, Z: c.Z - s.radius})
	s.rebuild()
}

// rebuild scans the window, evicting cells outside the streaming disc and
// collecting the empty in-disc cells as the new pending list.
func (s *Streamer[C]) rebuild() {
	r2 := s.radius * s.radius
	origin := s.store.Origin()
	side := s.store.Side()

	var want []Coord
	for z := origin.Z; z < origin.Z+side; z++ {
		for x := origin.X; x < origin.X+side; x++ {
			cell := Coord{X: x, Z: z}
			if cell.Dist2(s.center) > r2 {
				// Inside the square window but outside the disc; the
				// corner cells of the square are never loaded.
				s.store.Evict(cell)
				continue
			}
			if _, ok := s.store.Get(cell); !ok {
				want = append(want, cell)
			}
		}
	}

	// Farthest-first so the worker pops the nearest cell off the end.
	center := s.center
	sort.Slice(want, func(i, j int) bool {
		di, dj := want[i].Dist2(center), want[j].Dist2(center)
		if di != dj {
			return di > dj
		}
		if want[i].Z != want[j].Z {
			return want[i].Z > want[j].Z
		}
		return want[i].X > want[j].X
	})

	s.mu.Lock()
	s.pending = want
	if len(s.pending) > 0 && !s.running && !s.closed {
		s.running = true
		s.wg.Add(1)
		go s.worker()
	}
	s.mu.Unlock()
}

// worker generates pending cells nearest-first until the list is empty,
// then parks. The running flag flips inside the same critical section that
// observes the empty list, so a concurrent SetCenter either sees the worker
// as running or finds it fully stopped; there is no alive-check race.
func (s *Streamer[C]) worker() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		n := len(s.pending)
		if n == 0 {
			s.running = false
			s.mu.Unlock()
			return
		}
		cell := s.pending[n-1]
		s.pending = s.pending[:n-1]
		s.mu.Unlock()

		content, err := s.gen.Generate(cell)
		if err != nil {
			// The cell stays empty until a later window move re-queues it.
			s.log.Error("cell generation failed", "x", cell.X, "z", cell.Z, "err", err)
			continue
		}
		s.resultsIn <- result[C]{cell: cell, content: content}
	}
}

// Tick drains all currently available generation results without blocking
// and promotes them into the store. Call once per frame on the consuming
// goroutine. Results for cells that left the streaming disc while being
// generated are released and dropped.
func (s *Streamer[C]) Tick() {
	r2 := s.radius * s.radius
	for {
		select {
		case res := <-s.resultsOut:
			if res.cell.Dist2(s.center) > r2 {
				s.log.Debug("dropping stale result", "x", res.cell.X, "z", res.cell.Z)
				s.event(TraceDrop, res.cell)
				s.release(res.content)
				continue
			}
			if s.store.Promote(res.cell, res.content) {
				s.event(TracePromote, res.cell)
				if s.promote != nil {
					s.promote(res.cell, res.content)
				}
			}
		default:
			return
		}
	}
}

// Idle reports whether no generation work is pending or in progress.
// Results may still be waiting in the handoff queue; Tick collects them.
func (s *Streamer[C]) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && len(s.pending) == 0
}

// Close stops the worker, releases undelivered results and evicts every
// loaded cell. The streamer must not be used afterwards.
func (s *Streamer[C]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	s.wg.Wait()
	close(s.resultsIn)
	for res := range s.resultsOut {
		s.release(res.content)
	}
	s.store.Clear()
}

func (s *Streamer[C]) event(kind string, cell Coord) {
	if s.trace != nil {
		s.trace.Event(kind, cell)
	}
}
