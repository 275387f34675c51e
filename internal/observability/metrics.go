package observability

import (
	"sort"
	"sync"
	"time"
)

// Metrics keeps in-process request and error counters. Counters reset on
// restart; the health metrics endpoint serves a point-in-time snapshot.
type Metrics struct {
	mu     sync.Mutex
	routes map[routeKey]*routeTally
	errors map[string]int64
}

type routeKey struct {
	method string
	route  string
	status int
}

type routeTally struct {
	count int64
	total time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		routes: make(map[routeKey]*routeTally),
		errors: make(map[string]int64),
	}
}

// RecordRequest tallies one served request under its route pattern, so
// /public/tickets/:code stays a single series regardless of the code.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey{method: method, route: route, status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	tally := m.routes[key]
	if tally == nil {
		tally = &routeTally{}
		m.routes[key] = tally
	}
	tally.count++
	tally.total += duration
}

// RecordError tallies one failed request by its machine-readable error code
// (NOT_FOUND, INVALID_TRANSITION, ...).
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
}

// RouteMetric is one row of the snapshot.
type RouteMetric struct {
	Method        string  `json:"method"`
	Route         string  `json:"route"`
	Status        int     `json:"status"`
	Count         int64   `json:"count"`
	AverageMillis float64 `json:"average_ms"`
}

// Snapshot is the point-in-time counter state.
type Snapshot struct {
	Requests     []RouteMetric    `json:"requests"`
	ErrorsByCode map[string]int64 `json:"errors_by_code"`
}

// Snapshot returns the current counters, routes sorted for stable output.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Requests: []RouteMetric{}, ErrorsByCode: map[string]int64{}}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, tally := range m.routes {
		snap.Requests = append(snap.Requests, RouteMetric{
			Method:        key.method,
			Route:         key.route,
			Status:        key.status,
			Count:         tally.count,
			AverageMillis: tally.total.Seconds() * 1000 / float64(tally.count),
		})
	}
	sort.Slice(snap.Requests, func(i, j int) bool {
		a, b := snap.Requests[i], snap.Requests[j]
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Status < b.Status
	})
	for code, count := range m.errors {
		snap.ErrorsByCode[code] = count
	}
	return snap
}
