package telemetry

import (
	"sync"
	"time"
)

// TraceEvent captures one tool call for the recent-activity view.
type TraceEvent struct {
	Time     time.Time     `json:"time"`
	Tool     string        `json:"tool"`
	Input    string        `json:"input,omitempty"`
	Platform string        `json:"platform,omitempty"`
	Outcome  string        `json:"outcome"` // ok, error
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// TraceRecorder stores a bounded set of recent trace events.
type TraceRecorder struct {
	limit int
	mu    sync.RWMutex
	buf   []TraceEvent
}

// NewTraceRecorder creates a trace recorder with a fixed buffer size.
func NewTraceRecorder(limit int) *TraceRecorder {
	if limit <= 0 {
		limit = 200
	}
	return &TraceRecorder{limit: limit}
}

// Add records a new trace event, stamping Time when unset.
func (tr *TraceRecorder) Add(event TraceEvent) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	tr.buf = append(tr.buf, event)
	if len(tr.buf) > tr.limit {
		tr.buf = tr.buf[len(tr.buf)-tr.limit:]
	}
}

// List returns a copy of the current trace buffer in chronological order.
func (tr *TraceRecorder) List() []TraceEvent {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	out := make([]TraceEvent, len(tr.buf))
	copy(out, tr.buf)
	return out
}
