package repository

import (
	"context"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// StatusCount pairs a ticket status with its ticket count.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int64
}

// PriorityCount pairs a priority with its ticket count.
type PriorityCount struct {
	Priority domain.TicketPriority
	Count    int64
}

// TypeCount pairs a ticket type with its ticket count.
type TypeCount struct {
	TicketTypeID string
	Name         string
	Count        int64
}

// AssigneeCount summarizes open workload per assignee.
type AssigneeCount struct {
	UserID string
	Name   string
	Count  int64
}

// TicketStatsRepository serves the dashboard aggregations. All aggregates are
// computed on demand; there are no denormalized counters to drift.
type TicketStatsRepository interface {
	CountByStatus(ctx context.Context, q persistence.Querier) ([]StatusCount, error)
	CountByPriority(ctx context.Context, q persistence.Querier) ([]PriorityCount, error)
	CountByType(ctx context.Context, q persistence.Querier) ([]TypeCount, error)
	TopAssignees(ctx context.Context, q persistence.Querier, limit int) ([]AssigneeCount, error)
	AverageResolutionSeconds(ctx context.Context, q persistence.Querier) (*float64, error)
	AverageRating(ctx context.Context, q persistence.Querier) (*float64, error)
	SLAInputs(ctx context.Context, q persistence.Querier) ([]SLAInput, error)
}

// SLAInput is one ticket's SLA-relevant fields for bucket classification.
// Timestamps travel as unix seconds to keep the scan narrow.
type SLAInput struct {
	Opened      int64
	SLAHours    *int32
	CompletedAt *int64
}

type ticketStatsRepository struct{}

// NewTicketStatsRepository builds the repository.
func NewTicketStatsRepository() TicketStatsRepository {
	return &ticketStatsRepository{}
}

func (r *ticketStatsRepository) CountByStatus(ctx context.Context, q persistence.Querier) ([]StatusCount, error) {
	const query = `
        SELECT status, COUNT(*) FROM tickets
        WHERE deleted_at IS NULL
        GROUP BY status`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var row StatusCount
		if err := rows.Scan(&row.Status, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketStatsRepository) CountByPriority(ctx context.Context, q persistence.Querier) ([]PriorityCount, error) {
	const query = `
        SELECT priority, COUNT(*) FROM tickets
        WHERE deleted_at IS NULL
        GROUP BY priority`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PriorityCount
	for rows.Next() {
		var row PriorityCount
		if err := rows.Scan(&row.Priority, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketStatsRepository) CountByType(ctx context.Context, q persistence.Querier) ([]TypeCount, error) {
	const query = `
        SELECT t.ticket_type_id, tt.name, COUNT(*)
        FROM tickets t
        JOIN ticket_types tt ON tt.id = t.ticket_type_id
        WHERE t.deleted_at IS NULL
        GROUP BY t.ticket_type_id, tt.name
        ORDER BY COUNT(*) DESC`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TypeCount
	for rows.Next() {
		var row TypeCount
		if err := rows.Scan(&row.TicketTypeID, &row.Name, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketStatsRepository) TopAssignees(ctx context.Context, q persistence.Querier, limit int) ([]AssigneeCount, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
        SELECT t.assigned_to_id, COALESCE(u.name, ''), COUNT(*)
        FROM tickets t
        LEFT JOIN users u ON u.id = t.assigned_to_id
        WHERE t.deleted_at IS NULL AND t.assigned_to_id IS NOT NULL
        GROUP BY t.assigned_to_id, u.name
        ORDER BY COUNT(*) DESC
        LIMIT $1`
	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AssigneeCount
	for rows.Next() {
		var row AssigneeCount
		if err := rows.Scan(&row.UserID, &row.Name, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketStatsRepository) AverageResolutionSeconds(ctx context.Context, q persistence.Querier) (*float64, error) {
	const query = `
        SELECT AVG(EXTRACT(EPOCH FROM (completed_at - opened_at)))
        FROM tickets
        WHERE deleted_at IS NULL AND completed_at IS NOT NULL`
	var avg *float64
	if err := q.QueryRow(ctx, query).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *ticketStatsRepository) AverageRating(ctx context.Context, q persistence.Querier) (*float64, error) {
	const query = `
        SELECT AVG(rating)::float8 FROM tickets
        WHERE deleted_at IS NULL AND rating IS NOT NULL`
	var avg *float64
	if err := q.QueryRow(ctx, query).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *ticketStatsRepository) SLAInputs(ctx context.Context, q persistence.Querier) ([]SLAInput, error) {
	const query = `
        SELECT EXTRACT(EPOCH FROM t.opened_at)::bigint, tt.sla_hours,
               EXTRACT(EPOCH FROM t.completed_at)::bigint
        FROM tickets t
        JOIN ticket_types tt ON tt.id = t.ticket_type_id
        WHERE t.deleted_at IS NULL`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SLAInput
	for rows.Next() {
		var row SLAInput
		if err := rows.Scan(&row.Opened, &row.SLAHours, &row.CompletedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
