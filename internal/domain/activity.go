package domain

import "time"

// ActivityType categorizes timeline events.
type ActivityType string

const (
	ActivityCreated           ActivityType = "created"
	ActivityStatusChanged     ActivityType = "status_changed"
	ActivityPriorityChanged   ActivityType = "priority_changed"
	ActivityAssigned          ActivityType = "assigned"
	ActivityReassigned        ActivityType = "reassigned"
	ActivityCommentAdded      ActivityType = "comment_added"
	ActivityAttachmentAdded   ActivityType = "attachment_added"
	ActivityInterventionAdded ActivityType = "intervention_added"
	ActivityClosed            ActivityType = "closed"
	ActivityReopened          ActivityType = "reopened"
	ActivitySLAWarning        ActivityType = "sla_warning"
	ActivitySLABreach         ActivityType = "sla_breach"
)

var activityLabels = map[ActivityType]string{
	ActivityCreated:           "Ticket created",
	ActivityStatusChanged:     "Status changed",
	ActivityPriorityChanged:   "Priority changed",
	ActivityAssigned:          "Ticket assigned",
	ActivityReassigned:        "Ticket reassigned",
	ActivityCommentAdded:      "Comment added",
	ActivityAttachmentAdded:   "Attachment added",
	ActivityInterventionAdded: "Intervention recorded",
	ActivityClosed:            "Ticket closed",
	ActivityReopened:          "Ticket reopened",
	ActivitySLAWarning:        "SLA warning",
	ActivitySLABreach:         "SLA breached",
}

// Label returns the human-readable description of the activity type.
func (t ActivityType) Label() string {
	if label, ok := activityLabels[t]; ok {
		return label
	}
	return string(t)
}

// Activity is an immutable audit trail entry. One row is written per semantic
// change, inside the same transaction as the mutation it describes; entries
// are never updated or re-ordered after insert.
type Activity struct {
	ID          string
	TicketID    string
	Type        ActivityType
	ActorUserID *string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// MetadataKeyInternal marks a comment_added activity as staff-only.
const MetadataKeyInternal = "is_internal"

// IsInternalComment reports whether the activity is a staff-only comment.
func (a Activity) IsInternalComment() bool {
	if a.Type != ActivityCommentAdded {
		return false
	}
	internal, _ := a.Metadata[MetadataKeyInternal].(bool)
	return internal
}
