package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotAggregatesByRoutePattern(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/public/tickets/:code", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/public/tickets/:code", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/tickets", "POST", 201, 5*time.Millisecond)
	m.RecordError("NOT_FOUND")
	m.RecordError("NOT_FOUND")
	m.RecordError("INVALID_TRANSITION")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)

	assert.Equal(t, "/api/tickets", snap.Requests[0].Route)
	assert.Equal(t, "POST", snap.Requests[0].Method)
	assert.Equal(t, 201, snap.Requests[0].Status)
	assert.Equal(t, int64(1), snap.Requests[0].Count)
	assert.InDelta(t, 5.0, snap.Requests[0].AverageMillis, 0.001)

	assert.Equal(t, "/public/tickets/:code", snap.Requests[1].Route)
	assert.Equal(t, int64(2), snap.Requests[1].Count)
	assert.InDelta(t, 20.0, snap.Requests[1].AverageMillis, 0.001)

	assert.Equal(t, int64(2), snap.ErrorsByCode["NOT_FOUND"])
	assert.Equal(t, int64(1), snap.ErrorsByCode["INVALID_TRANSITION"])
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/api/tickets", "GET", 200, time.Millisecond)
	m.RecordError("NOT_FOUND")
	assert.Empty(t, m.Snapshot().Requests)
}
