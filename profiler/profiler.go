// Package profiler - Render timing against the per-frame budget.
package profiler

import (
	"sync"
	"time"
)

// Stats summarizes recorded render durations.
type Stats struct {
	// Count is the number of recorded renders.
	Count int64
	// AverageMs is the mean render duration in milliseconds.
	AverageMs float64
	// MaxMs is the slowest recorded render in milliseconds.
	MaxMs float64
	// ThroughputFPS is the sustained frame rate implied by the average.
	ThroughputFPS float64
}

// Tracker accumulates render durations. It is safe for concurrent use,
// though the pipeline records from a single render path.
type Tracker struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	max   time.Duration
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Start begins timing one render and returns the function that records it.
func (t *Tracker) Start() func() {
	start := time.Now()
	return func() {
		t.Record(time.Since(start))
	}
}

// Record adds one render duration.
func (t *Tracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.total += d
	if d > t.max {
		t.max = d
	}
}

// Stats returns the accumulated timing summary.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{
		Count: t.count,
		MaxMs: float64(t.max.Nanoseconds()) / 1e6,
	}
	if t.count > 0 {
		stats.AverageMs = float64(t.total.Nanoseconds()) / 1e6 / float64(t.count)
	}
	if stats.AverageMs > 0 {
		stats.ThroughputFPS = 1000.0 / stats.AverageMs
	}
	return stats
}

// Reset clears all recorded durations.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = 0
	t.total = 0
	t.max = 0
}
