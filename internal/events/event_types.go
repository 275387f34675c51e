package events

import (
	"time"

	"github.com/atlasdesk/support-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventInterventionAdded     EventType = "intervention_added"
)

// Event represents a domain event emitted by services. TenantID scopes the
// event to the tenant whose store produced it; ActorUserID is nil when the
// change came in through the public access channel with no principal.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	TenantID    string      `json:"tenant_id"`
	TicketID    string      `json:"ticket_id"`
	ActorUserID *string     `json:"actor_user_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	TicketTypeID string                `json:"ticket_type_id"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
	Public       bool                  `json:"public,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *string `json:"old_assignee_id,omitempty"`
	NewAssigneeID *string `json:"new_assignee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	ActivityID  string `json:"activity_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}

// InterventionAddedPayload payload.
type InterventionAddedPayload struct {
	InterventionID string                  `json:"intervention_id"`
	TechnicianID   string                  `json:"technician_id"`
	Type           domain.InterventionType `json:"type"`
}
