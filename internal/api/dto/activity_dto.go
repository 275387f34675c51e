package dto

import (
	"time"

	"github.com/atlasdesk/support-service/internal/domain"
)

// ActivityResponse is one timeline entry.
type ActivityResponse struct {
	ID          string              `json:"id"`
	TicketID    string              `json:"ticket_id"`
	Type        domain.ActivityType `json:"type"`
	Label       string              `json:"label"`
	ActorUserID *string             `json:"actor_user_id,omitempty"`
	Description string              `json:"description"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewActivityResponse maps an activity.
func NewActivityResponse(activity *domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          activity.ID,
		TicketID:    activity.TicketID,
		Type:        activity.Type,
		Label:       activity.Type.Label(),
		ActorUserID: activity.ActorUserID,
		Description: activity.Description,
		Metadata:    activity.Metadata,
		CreatedAt:   activity.CreatedAt,
	}
}

// NewActivityResponses maps a listing.
func NewActivityResponses(activities []domain.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(activities))
	for i := range activities {
		responses = append(responses, NewActivityResponse(&activities[i]))
	}
	return responses
}
