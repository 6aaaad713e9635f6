// Package performance provides performance monitoring utilities for
// tracking operation timings across the engage engine.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g., "track:pageview", "admin:list_visitors"
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Completed bool           `json:"completed"`
}

// Complete marks the operation as finished and calculates final metrics
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Tracker records operation markers in a bounded in-memory buffer so the
// admin dashboard can report recent operation timings.
type Tracker struct {
	mu         sync.RWMutex
	recent     []Marker
	maxMarkers int
}

// NewTracker creates a performance tracker.
func NewTracker() *Tracker {
	return &Tracker{
		maxMarkers: 1000,
	}
}

// StartOperation begins tracking a new operation and returns its marker.
func (t *Tracker) StartOperation(operation string) *Marker {
	return &Marker{
		Operation: operation,
		StartTime: time.Now(),
	}
}

// CompleteOperation finalizes a marker and records it.
func (t *Tracker) CompleteOperation(marker *Marker) {
	marker.Complete()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = append(t.recent, *marker)
	if len(t.recent) > t.maxMarkers {
		t.recent = t.recent[len(t.recent)-t.maxMarkers:]
	}
}

// GetRecentMetrics returns markers completed within the given window.
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	cutoff := time.Now().Add(-within)

	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []Marker
	for _, m := range t.recent {
		if m.EndTime.After(cutoff) {
			result = append(result, m)
		}
	}
	return result
}

// SuccessRate returns the fraction of recent operations that succeeded,
// or 1.0 when nothing has been recorded.
func (t *Tracker) SuccessRate(within time.Duration) float64 {
	metrics := t.GetRecentMetrics(within)
	if len(metrics) == 0 {
		return 1.0
	}

	succeeded := 0
	for _, m := range metrics {
		if m.Success {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(metrics))
}
