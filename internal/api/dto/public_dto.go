package dto

import "github.com/atlasdesk/support-service/internal/domain"

// PublicCreateTicketRequest is the anonymous intake payload. client_id is
// optional and links the ticket to an existing client account.
type PublicCreateTicketRequest struct {
	TicketTypeID string                `json:"ticket_type_id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Location     *string               `json:"location"`
	ClientID     *string               `json:"client_id"`
}

// PublicCloseRequest payload.
type PublicCloseRequest struct {
	Resolution string `json:"resolution"`
}

// PublicReopenRequest payload.
type PublicReopenRequest struct {
	Reason string `json:"reason"`
}

// PublicRateRequest payload.
type PublicRateRequest struct {
	Rating  int16   `json:"rating"`
	Comment *string `json:"comment"`
}
