package domain

import "time"

// TicketType is an administrator-managed ticket category. SLAHours is the SLA
// budget in hours; nil means tickets of this type are not SLA tracked.
type TicketType struct {
	ID          string
	Name        string
	Description string
	SLAHours    *int32
	Icon        string
	Color       string
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
