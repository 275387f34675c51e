package dto

import (
	"time"

	"github.com/atlasdesk/support-service/internal/domain"
)

// TicketTypeRequest payload for create and update.
type TicketTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SLAHours    *int32 `json:"sla_hours"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// TicketTypeResponse representation.
type TicketTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SLAHours    *int32    `json:"sla_hours,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTicketTypeResponse maps a ticket type.
func NewTicketTypeResponse(ticketType *domain.TicketType) TicketTypeResponse {
	return TicketTypeResponse{
		ID:          ticketType.ID,
		Name:        ticketType.Name,
		Description: ticketType.Description,
		SLAHours:    ticketType.SLAHours,
		Icon:        ticketType.Icon,
		Color:       ticketType.Color,
		CreatedAt:   ticketType.CreatedAt,
		UpdatedAt:   ticketType.UpdatedAt,
	}
}

// NewTicketTypeResponses maps a listing.
func NewTicketTypeResponses(types []domain.TicketType) []TicketTypeResponse {
	responses := make([]TicketTypeResponse, 0, len(types))
	for i := range types {
		responses = append(responses, NewTicketTypeResponse(&types[i]))
	}
	return responses
}
