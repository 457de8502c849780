// Package trace records streaming events as zstd-compressed JSON lines,
// one event per line, for offline inspection of chunk churn.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/mkrall/go-terrain/pkg/stream"
)

// Event is one line of the trace file.
type Event struct {
	T     int64  `json:"t"` // unix milliseconds
	Event string `json:"event"`
	X     int    `json:"x"`
	Z     int    `json:"z"`
}

// Recorder writes streaming events to a compressed JSONL file. It
// implements the streamer's trace sink and is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	file *os.File
	zw   *zstd.Encoder
	bw   *bufio.Writer
	enc  *json.Encoder

	now func() time.Time
}

// NewRecorder creates or truncates the trace file at path.
func NewRecorder(path string) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	zw, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	bw := bufio.NewWriter(zw)
	return &Recorder{
		file: file,
		zw:   zw,
		bw:   bw,
		enc:  json.NewEncoder(bw),
		now:  time.Now,
	}, nil
}

// Event records one streaming event. Implements stream.TraceSink.
func (r *Recorder) Event(kind string, cell stream.Coord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	// json.Encoder terminates each record with a newline.
	_ = r.enc.Encode(Event{
		T:     r.now().UnixMilli(),
		Event: kind,
		X:     cell.X,
		Z:     cell.Z,
	})
}

// Close flushes and closes the trace file. Safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	flushErr := r.bw.Flush()
	zErr := r.zw.Close()
	fErr := r.file.Close()
	r.file = nil
	if flushErr != nil {
		return flushErr
	}
	if zErr != nil {
		return zErr
	}
	return fErr
}

var _ stream.TraceSink = (*Recorder)(nil)
