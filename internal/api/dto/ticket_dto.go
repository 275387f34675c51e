package dto

import (
	"time"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/service"
	"github.com/atlasdesk/support-service/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketTypeID string                `json:"ticket_type_id"`
	ClientID     *string               `json:"client_id"`
	EquipmentID  *string               `json:"equipment_id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	RequesterID  string                `json:"requester_id"`
	AssignedToID *string               `json:"assigned_to_id"`
	Location     *string               `json:"location"`
	ExpectedAt   *time.Time            `json:"expected_at"`
}

// UpdateTicketRequest payload; omitted fields are untouched.
type UpdateTicketRequest struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Priority     *domain.TicketPriority `json:"priority"`
	Status       *domain.TicketStatus   `json:"status"`
	AssignedToID *string                `json:"assigned_to_id"`
	Location     *string                `json:"location"`
	ExpectedAt   *time.Time             `json:"expected_at"`
	ClientID     *string                `json:"client_id"`
	EquipmentID  *string                `json:"equipment_id"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Resolution string `json:"resolution"`
}

// ReopenTicketRequest payload.
type ReopenTicketRequest struct {
	Reason string `json:"reason"`
}

// CommentRequest payload.
type CommentRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// RateTicketRequest payload.
type RateTicketRequest struct {
	Rating  int16   `json:"rating"`
	Comment *string `json:"comment"`
}

// TicketResponse is the staff-facing ticket representation.
type TicketResponse struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	UniqueCode    string                `json:"unique_code"`
	TicketTypeID  string                `json:"ticket_type_id"`
	ClientID      *string               `json:"client_id,omitempty"`
	EquipmentID   *string               `json:"equipment_id,omitempty"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	RequesterID   string                `json:"requester_id"`
	AssignedToID  *string               `json:"assigned_to_id,omitempty"`
	Location      *string               `json:"location,omitempty"`
	OpenedAt      time.Time             `json:"opened_at"`
	ExpectedAt    *time.Time            `json:"expected_at,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
	Rating        *int16                `json:"rating,omitempty"`
	RatingComment *string               `json:"rating_comment,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	SLA           *sla.Snapshot         `json:"sla,omitempty"`
}

// NewTicketResponse maps a ticket (and optional SLA snapshot) to its response.
func NewTicketResponse(ticket *domain.Ticket, snapshot *sla.Snapshot) TicketResponse {
	return TicketResponse{
		ID:            ticket.ID,
		TicketNumber:  ticket.TicketNumber,
		UniqueCode:    ticket.UniqueCode,
		TicketTypeID:  ticket.TicketTypeID,
		ClientID:      ticket.ClientID,
		EquipmentID:   ticket.EquipmentID,
		Title:         ticket.Title,
		Description:   ticket.Description,
		Priority:      ticket.Priority,
		Status:        ticket.Status,
		RequesterID:   ticket.RequesterID,
		AssignedToID:  ticket.AssignedToID,
		Location:      ticket.Location,
		OpenedAt:      ticket.OpenedAt,
		ExpectedAt:    ticket.ExpectedAt,
		CompletedAt:   ticket.CompletedAt,
		Rating:        ticket.Rating,
		RatingComment: ticket.RatingComment,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
		SLA:           snapshot,
	}
}

// NewTicketResponses maps a listing result.
func NewTicketResponses(items []service.TicketWithSLA) []TicketResponse {
	responses := make([]TicketResponse, 0, len(items))
	for i := range items {
		responses = append(responses, NewTicketResponse(&items[i].Ticket, items[i].SLA))
	}
	return responses
}
