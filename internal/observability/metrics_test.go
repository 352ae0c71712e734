package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/support", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/support", "GET", 200, 4*time.Millisecond)
	m.RecordError("/api/v1/queries/:id/close", "POST", "CONFLICT")

	snap := m.Snapshot()
	if got := snap.Requests["/support|GET|200"]; got != 2 {
		t.Errorf("requests = %d", got)
	}
	if got := snap.AvgLatencyMs["/support|GET|200"]; got != 3 {
		t.Errorf("avg latency = %v", got)
	}
	if got := snap.Errors["/api/v1/queries/:id/close|POST|CONFLICT"]; got != 1 {
		t.Errorf("errors = %d", got)
	}

	// Snapshots are copies.
	snap.Requests["/support|GET|200"] = 99
	if m.Snapshot().Requests["/support|GET|200"] != 2 {
		t.Error("snapshot aliases internal state")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	if len(m.Snapshot().Requests) != 0 {
		t.Error("nil metrics should report nothing")
	}
}
