package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// ActivityTypeCount pairs an activity type with its event count.
type ActivityTypeCount struct {
	Type  domain.ActivityType
	Count int64
}

// ActivityRepository stores the append-only ticket timeline. Rows are never
// updated; Delete exists only for the administrative exception.
type ActivityRepository interface {
	Create(ctx context.Context, q persistence.Querier, activity *domain.Activity) error
	ListByTicket(ctx context.Context, q persistence.Querier, ticketID string) ([]domain.Activity, error)
	ListComments(ctx context.Context, q persistence.Querier, ticketID string, includeInternal bool) ([]domain.Activity, error)
	CountByType(ctx context.Context, q persistence.Querier) ([]ActivityTypeCount, error)
	Delete(ctx context.Context, q persistence.Querier, id string) error
}

type activityRepository struct{}

// NewActivityRepository builds repository.
func NewActivityRepository() ActivityRepository {
	return &activityRepository{}
}

func (r *activityRepository) Create(ctx context.Context, q persistence.Querier, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (ticket_id, activity_type, actor_user_id, description, metadata)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	metadata := activity.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return q.QueryRow(ctx, query,
		activity.TicketID,
		activity.Type,
		activity.ActorUserID,
		activity.Description,
		metadata,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *activityRepository) ListByTicket(ctx context.Context, q persistence.Querier, ticketID string) ([]domain.Activity, error) {
	// Newest first; insertion id breaks creation-timestamp ties.
	const query = `
        SELECT id, ticket_id, activity_type, actor_user_id, description, metadata, created_at
        FROM activities WHERE ticket_id=$1
        ORDER BY created_at DESC, id DESC`
	rows, err := q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (r *activityRepository) ListComments(ctx context.Context, q persistence.Querier, ticketID string, includeInternal bool) ([]domain.Activity, error) {
	const query = `
        SELECT id, ticket_id, activity_type, actor_user_id, description, metadata, created_at
        FROM activities
        WHERE ticket_id=$1 AND activity_type=$2
          AND ($3 OR COALESCE((metadata->>'is_internal')::boolean, false) = false)
        ORDER BY created_at DESC, id DESC`
	rows, err := q.Query(ctx, query, ticketID, domain.ActivityCommentAdded, includeInternal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (r *activityRepository) CountByType(ctx context.Context, q persistence.Querier) ([]ActivityTypeCount, error) {
	const query = `SELECT activity_type, COUNT(*) FROM activities GROUP BY activity_type`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ActivityTypeCount
	for rows.Next() {
		var row ActivityTypeCount
		if err := rows.Scan(&row.Type, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *activityRepository) Delete(ctx context.Context, q persistence.Querier, id string) error {
	cmd, err := q.Exec(ctx, `DELETE FROM activities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanActivities(rows pgx.Rows) ([]domain.Activity, error) {
	var result []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.TicketID,
			&activity.Type,
			&activity.ActorUserID,
			&activity.Description,
			&activity.Metadata,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
