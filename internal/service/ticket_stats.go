package service

import (
	"context"
	"time"

	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/sla"
)

// DashboardStats is the on-demand operational summary for one tenant. All
// figures are computed from the live tables when asked for; nothing here is a
// stored counter.
type DashboardStats struct {
	ByStatus                 map[string]int64          `json:"by_status"`
	ByPriority               map[string]int64          `json:"by_priority"`
	ByType                   []repository.TypeCount    `json:"by_type"`
	TopAssignees             []repository.AssigneeCount `json:"top_assignees"`
	AverageResolutionMinutes *float64                  `json:"average_resolution_minutes"`
	AverageRating            *float64                  `json:"average_rating"`
	SLA                      SLABuckets                `json:"sla"`
}

// SLABuckets counts tickets per SLA state. Exempt holds tickets whose type
// carries no budget.
type SLABuckets struct {
	OK       int64 `json:"ok"`
	Warning  int64 `json:"warning"`
	Critical int64 `json:"critical"`
	Breached int64 `json:"breached"`
	Exempt   int64 `json:"exempt"`
}

// DashboardStats aggregates counts, averages and SLA buckets for the tenant.
// Averages are nil when no ticket qualifies yet. SLA classification runs each
// ticket through the same evaluation used for single-ticket reads.
func (s *TicketService) DashboardStats(ctx context.Context, tenantID string) (*DashboardStats, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
	}

	statusCounts, err := s.stats.CountByStatus(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, row := range statusCounts {
		stats.ByStatus[string(row.Status)] = row.Count
	}

	priorityCounts, err := s.stats.CountByPriority(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, row := range priorityCounts {
		stats.ByPriority[string(row.Priority)] = row.Count
	}

	if stats.ByType, err = s.stats.CountByType(ctx, db); err != nil {
		return nil, err
	}
	if stats.TopAssignees, err = s.stats.TopAssignees(ctx, db, 5); err != nil {
		return nil, err
	}

	avgSeconds, err := s.stats.AverageResolutionSeconds(ctx, db)
	if err != nil {
		return nil, err
	}
	if avgSeconds != nil {
		minutes := *avgSeconds / 60
		stats.AverageResolutionMinutes = &minutes
	}
	if stats.AverageRating, err = s.stats.AverageRating(ctx, db); err != nil {
		return nil, err
	}

	inputs, err := s.stats.SLAInputs(ctx, db)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, input := range inputs {
		var completedAt *time.Time
		if input.CompletedAt != nil {
			completed := time.Unix(*input.CompletedAt, 0).UTC()
			completedAt = &completed
		}
		snapshot := sla.Evaluate(time.Unix(input.Opened, 0).UTC(), input.SLAHours, completedAt, now)
		switch {
		case snapshot == nil:
			stats.SLA.Exempt++
		case snapshot.Status == sla.StatusBreached:
			stats.SLA.Breached++
		case snapshot.Status == sla.StatusCritical:
			stats.SLA.Critical++
		case snapshot.Status == sla.StatusWarning:
			stats.SLA.Warning++
		default:
			stats.SLA.OK++
		}
	}

	return stats, nil
}
