package service

import (
	"context"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/tenant"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// ActivityService owns the append-only ticket timeline. Log runs on whatever
// handle the caller passes, so a mutation and its audit entry share one
// transaction: if the entry cannot be written the mutation rolls back. That
// policy is uniform across every caller, intervention logging included.
type ActivityService struct {
	tenants    tenant.Store
	activities repository.ActivityRepository
}

// NewActivityService constructs the service.
func NewActivityService(tenants tenant.Store, activities repository.ActivityRepository) *ActivityService {
	return &ActivityService{tenants: tenants, activities: activities}
}

// Log appends one immutable event to a ticket's timeline.
func (s *ActivityService) Log(ctx context.Context, q persistence.Querier, ticketID string, activityType domain.ActivityType, actorUserID *string, description string, metadata map[string]any) (*domain.Activity, error) {
	activity := &domain.Activity{
		TicketID:    ticketID,
		Type:        activityType,
		ActorUserID: actorUserID,
		Description: description,
		Metadata:    metadata,
	}
	if err := s.activities.Create(ctx, q, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Timeline returns all activities for a ticket, newest first.
func (s *ActivityService) Timeline(ctx context.Context, tenantID, ticketID string) ([]domain.Activity, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.activities.ListByTicket(ctx, db, ticketID)
}

// Comments filters the timeline to comment events. Internal-only comments are
// excluded unless includeInternal is set: that flag is the policy boundary
// between the staff view and the customer view of the same log.
func (s *ActivityService) Comments(ctx context.Context, tenantID, ticketID string, includeInternal bool) ([]domain.Activity, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.activities.ListComments(ctx, db, ticketID, includeInternal)
}

// Stats returns event counts per activity type.
func (s *ActivityService) Stats(ctx context.Context, tenantID string) ([]repository.ActivityTypeCount, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.activities.CountByType(ctx, db)
}

// DeleteEntry removes a single timeline entry. This is the administrative
// exception to append-only, not part of any normal flow.
func (s *ActivityService) DeleteEntry(ctx context.Context, tenantID, activityID string) error {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, db, activityID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("activity", map[string]any{"activity_id": activityID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
