package domain

// allowedTransitions is the explicit ticket state machine. A status absent from
// a target list is rejected before any mutation happens; same-status updates
// are treated as no-ops by callers, not as transitions.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusReopened},
	TicketStatusClosed:     {TicketStatusReopened},
	TicketStatusReopened:   {TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled},
	TicketStatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
