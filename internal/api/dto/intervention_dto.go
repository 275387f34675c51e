package dto

import (
	"time"

	"github.com/atlasdesk/support-service/internal/domain"
)

// CreateInterventionRequest payload.
type CreateInterventionRequest struct {
	TicketID        string                    `json:"ticket_id"`
	TechnicianID    string                    `json:"technician_id"`
	Type            domain.InterventionType   `json:"type"`
	Description     string                    `json:"description"`
	StartTime       *time.Time                `json:"start_time"`
	EndTime         *time.Time                `json:"end_time"`
	DurationMinutes *int32                    `json:"duration_minutes"`
	Status          domain.InterventionStatus `json:"status"`
	Notes           *string                   `json:"notes"`
	LaborCost       *float64                  `json:"labor_cost"`
	PartsCost       *float64                  `json:"parts_cost"`
}

// UpdateInterventionRequest payload; omitted fields are untouched.
type UpdateInterventionRequest struct {
	Type            *domain.InterventionType   `json:"type"`
	Description     *string                    `json:"description"`
	StartTime       *time.Time                 `json:"start_time"`
	EndTime         *time.Time                 `json:"end_time"`
	DurationMinutes *int32                     `json:"duration_minutes"`
	Status          *domain.InterventionStatus `json:"status"`
	Notes           *string                    `json:"notes"`
}

// AddCostRequest payload.
type AddCostRequest struct {
	Description string          `json:"description"`
	CostType    domain.CostType `json:"cost_type"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	TotalPrice  float64         `json:"total_price"`
}

// CostResponse is one itemized cost line.
type CostResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	CostType    domain.CostType `json:"cost_type"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	TotalPrice  float64         `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InterventionResponse representation with cost lines.
type InterventionResponse struct {
	ID              string                    `json:"id"`
	TicketID        string                    `json:"ticket_id"`
	TechnicianID    string                    `json:"technician_id"`
	Type            domain.InterventionType   `json:"type"`
	Description     string                    `json:"description"`
	StartTime       time.Time                 `json:"start_time"`
	EndTime         *time.Time                `json:"end_time,omitempty"`
	DurationMinutes *int32                    `json:"duration_minutes,omitempty"`
	Status          domain.InterventionStatus `json:"status"`
	Notes           *string                   `json:"notes,omitempty"`
	Costs           []CostResponse            `json:"costs"`
	TotalCost       float64                   `json:"total_cost"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// NewInterventionResponse maps an intervention.
func NewInterventionResponse(intervention *domain.Intervention) InterventionResponse {
	costs := make([]CostResponse, 0, len(intervention.Costs))
	for _, line := range intervention.Costs {
		costs = append(costs, CostResponse{
			ID:          line.ID,
			Description: line.Description,
			CostType:    line.CostType,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
			CreatedAt:   line.CreatedAt,
		})
	}
	return InterventionResponse{
		ID:              intervention.ID,
		TicketID:        intervention.TicketID,
		TechnicianID:    intervention.TechnicianID,
		Type:            intervention.Type,
		Description:     intervention.Description,
		StartTime:       intervention.StartTime,
		EndTime:         intervention.EndTime,
		DurationMinutes: intervention.DurationMinutes,
		Status:          intervention.Status,
		Notes:           intervention.Notes,
		Costs:           costs,
		TotalCost:       intervention.TotalCost,
		CreatedAt:       intervention.CreatedAt,
		UpdatedAt:       intervention.UpdatedAt,
	}
}

// NewInterventionResponses maps a listing.
func NewInterventionResponses(interventions []domain.Intervention) []InterventionResponse {
	responses := make([]InterventionResponse, 0, len(interventions))
	for i := range interventions {
		responses = append(responses, NewInterventionResponse(&interventions[i]))
	}
	return responses
}
