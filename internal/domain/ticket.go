package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusReopened   TicketStatus = "REOPENED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// IsCompleted reports whether the status is a terminal "done" state.
// Only completed tickets carry a CompletedAt timestamp.
func (s TicketStatus) IsCompleted() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved,
		TicketStatusClosed, TicketStatusReopened, TicketStatusCancelled:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityUrgent   TicketPriority = "URGENT"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh,
		TicketPriorityUrgent, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// TicketNumber is the human-facing sequential identifier; UniqueCode is the
// opaque public access code. Both are immutable after creation, as is OpenedAt.
// CompletedAt is non-nil exactly when Status.IsCompleted().
type Ticket struct {
	ID            string
	TicketNumber  string
	UniqueCode    string
	TicketTypeID  string
	ClientID      *string
	EquipmentID   *string
	Title         string
	Description   string
	Priority      TicketPriority
	Status        TicketStatus
	RequesterID   string
	AssignedToID  *string
	Location      *string
	OpenedAt      time.Time
	ExpectedAt    *time.Time
	CompletedAt   *time.Time
	Rating        *int16
	RatingComment *string
	DeletedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
