package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
)

// SearchEvent is one completed search request, flattened for columnar
// storage and offline analysis of query mix and latency.
type SearchEvent struct {
	RequestID      string    `parquet:"request_id"`
	Timestamp      time.Time `parquet:"timestamp"`
	QueryType      string    `parquet:"query_type"`
	RawQuery       string    `parquet:"raw_query"`
	Persona        string    `parquet:"persona"`
	CandidateCount int       `parquet:"candidate_count"`
	ElapsedMS      int64     `parquet:"elapsed_ms"`
	Retried        bool      `parquet:"retried"`
	Error          string    `parquet:"error"`
}

// Recorder batches search events into Parquet files under a directory.
// A nil *Recorder is valid and records nothing, so callers never need a
// conditional around the disabled case.
type Recorder struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []SearchEvent
}

// NewRecorder creates a Recorder writing under outputDir.
func NewRecorder(outputDir string, batchSize int) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Recorder{
		outputDir: outputDir,
		batchSize: batchSize,
		buffer:    make([]SearchEvent, 0, batchSize),
	}, nil
}

// Record buffers one event, flushing when the batch fills.
func (r *Recorder) Record(event SearchEvent) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, event)
	if len(r.buffer) >= r.batchSize {
		// Flush failures drop the batch rather than block searches.
		_ = r.flushLocked()
	}
}

// Flush writes any buffered events to disk.
func (r *Recorder) Flush() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.buffer) == 0 {
		return nil
	}
	filename := fmt.Sprintf("search_events_%s_%d.parquet",
		time.Now().Format("20060102_150405"), time.Now().UnixNano())
	if err := parquet.WriteFile(filepath.Join(r.outputDir, filename), r.buffer); err != nil {
		return fmt.Errorf("failed to write search events: %w", err)
	}
	r.buffer = r.buffer[:0]
	return nil
}
