// Package sla derives deadline, remaining time and a four-level status from a
// ticket type's SLA budget and the ticket's open/complete timestamps. The
// computation is pure and is invoked at read time, so a snapshot is always
// consistent with the current (or final) ticket state. Every call site uses
// this single code path; none special-case rounding or the reference instant.
package sla

import (
	"math"
	"time"
)

// Status classifies how much of the SLA budget remains.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusBreached Status = "breached"
)

// Classification thresholds, in percent of budget remaining.
const (
	criticalThreshold = 10.0
	warningThreshold  = 25.0
)

// Snapshot is the derived, never-persisted SLA state of a ticket.
type Snapshot struct {
	Deadline         time.Time `json:"deadline"`
	Status           Status    `json:"status"`
	RemainingMinutes int64     `json:"remaining_minutes"`
	TotalMinutes     int64     `json:"total_minutes"`
	PercentRemaining float64   `json:"percentage_remaining"`
	Breached         bool      `json:"is_breached"`
}

// Evaluate computes the SLA snapshot for a ticket.
//
// The reference instant is completedAt when the ticket is finished, so closed
// tickets report whether the SLA was met at closure time, not relative to now.
// Returns nil when slaHours is nil or openedAt is zero: the ticket is SLA
// exempt.
func Evaluate(openedAt time.Time, slaHours *int32, completedAt *time.Time, now time.Time) *Snapshot {
	if slaHours == nil || openedAt.IsZero() {
		return nil
	}

	deadline := openedAt.Add(time.Duration(*slaHours) * time.Hour)
	reference := now
	if completedAt != nil {
		reference = *completedAt
	}

	remaining := int64(math.Floor(deadline.Sub(reference).Minutes()))
	total := int64(*slaHours) * 60
	var percent float64
	if total > 0 {
		percent = float64(remaining) / float64(total) * 100
	}

	snapshot := &Snapshot{
		Deadline:         deadline,
		RemainingMinutes: remaining,
		TotalMinutes:     total,
		PercentRemaining: percent,
	}

	switch {
	case remaining < 0:
		snapshot.Status = StatusBreached
		snapshot.Breached = true
	case percent < criticalThreshold:
		snapshot.Status = StatusCritical
	case percent < warningThreshold:
		snapshot.Status = StatusWarning
	default:
		snapshot.Status = StatusOK
	}
	return snapshot
}
