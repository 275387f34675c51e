package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hoursPtr(h int32) *int32 { return &h }

func TestEvaluateDeadline(t *testing.T) {
	opened := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	snap := Evaluate(opened, hoursPtr(24), nil, opened)
	require.NotNil(t, snap)
	assert.Equal(t, opened.Add(24*time.Hour), snap.Deadline)
	assert.Equal(t, int64(24*60), snap.TotalMinutes)
	assert.Equal(t, int64(24*60), snap.RemainingMinutes)
	assert.InDelta(t, 100.0, snap.PercentRemaining, 0.001)
	assert.Equal(t, StatusOK, snap.Status)
	assert.False(t, snap.Breached)
}

func TestEvaluateExempt(t *testing.T) {
	opened := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Nil(t, Evaluate(opened, nil, nil, opened))
	assert.Nil(t, Evaluate(time.Time{}, hoursPtr(8), nil, opened))
}

func TestEvaluateStatusBoundaries(t *testing.T) {
	// Budget of 100 hours makes 1% of budget exactly 60 minutes, so the
	// warning/critical thresholds land on whole minutes.
	opened := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	budget := hoursPtr(100)
	total := 100 * 60 // minutes

	cases := []struct {
		name             string
		remainingMinutes int
		want             Status
	}{
		{"all budget left", total, StatusOK},
		{"just above warning", total*25/100 + 1, StatusOK}, // 25.016%
		{"exactly 25 percent", total * 25 / 100, StatusOK},
		{"just below 25 percent", total*25/100 - 1, StatusWarning},
		{"exactly 10 percent", total * 10 / 100, StatusWarning},
		{"just below 10 percent", total*10/100 - 1, StatusCritical},
		{"one minute left", 1, StatusCritical},
		{"zero minutes left", 0, StatusCritical},
		{"past deadline", -1, StatusBreached},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := opened.Add(time.Duration(total-tc.remainingMinutes) * time.Minute)
			snap := Evaluate(opened, budget, nil, now)
			require.NotNil(t, snap)
			assert.Equal(t, tc.want, snap.Status)
			assert.Equal(t, int64(tc.remainingMinutes), snap.RemainingMinutes)
			assert.Equal(t, tc.want == StatusBreached, snap.Breached)
		})
	}
}

func TestEvaluateUsesCompletionAsReference(t *testing.T) {
	opened := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	completed := opened.Add(4 * time.Hour)
	// Evaluated long after closure: the snapshot must still reflect closure time.
	now := opened.Add(90 * 24 * time.Hour)

	snap := Evaluate(opened, hoursPtr(8), &completed, now)
	require.NotNil(t, snap)
	assert.Equal(t, int64(4*60), snap.RemainingMinutes)
	assert.Equal(t, StatusOK, snap.Status)
	assert.False(t, snap.Breached)

	late := opened.Add(9 * time.Hour)
	snap = Evaluate(opened, hoursPtr(8), &late, now)
	require.NotNil(t, snap)
	assert.Equal(t, StatusBreached, snap.Status)
	assert.True(t, snap.Breached)
	assert.Equal(t, int64(-60), snap.RemainingMinutes)
}

func TestEvaluateScenarioHardware(t *testing.T) {
	// 24h budget, read immediately: ok at ~100%; after 22 hours (~8.3% left)
	// the status must be critical.
	opened := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	budget := hoursPtr(24)

	snap := Evaluate(opened, budget, nil, opened)
	require.NotNil(t, snap)
	assert.Equal(t, StatusOK, snap.Status)
	assert.InDelta(t, 100.0, snap.PercentRemaining, 0.01)

	snap = Evaluate(opened, budget, nil, opened.Add(22*time.Hour))
	require.NotNil(t, snap)
	assert.Equal(t, StatusCritical, snap.Status)
	assert.InDelta(t, 8.33, snap.PercentRemaining, 0.01)
}
