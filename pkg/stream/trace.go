package stream

// Trace event kinds passed to a TraceSink.
const (
	TraceShift   = "shift"   // the window center moved; cell is the new center
	TracePromote = "promote" // generated content became visible
	TraceEvict   = "evict"   // loaded content was released
	TraceDrop    = "drop"    // a generated result arrived for a cell no longer wanted
)

// TraceSink receives streaming lifecycle events for offline analysis. All
// calls happen on the consuming goroutine.
type TraceSink interface {
	Event(kind string, cell Coord)
}
