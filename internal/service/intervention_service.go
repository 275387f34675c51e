package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/events"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/tenant"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// InterventionService manages technician work sessions and their cost ledger.
type InterventionService struct {
	tenants       tenant.Store
	interventions repository.InterventionRepository
	tickets       repository.TicketRepository
	activity      *ActivityService
	dispatcher    events.Dispatcher
	now           func() time.Time
}

// InterventionDependencies bundles collaborators for the service.
type InterventionDependencies struct {
	Tenants          tenant.Store
	InterventionRepo repository.InterventionRepository
	TicketRepo       repository.TicketRepository
	Activity         *ActivityService
	Dispatcher       events.Dispatcher
	Now              func() time.Time
}

// NewInterventionService constructs the service. Now defaults to time.Now.
func NewInterventionService(deps InterventionDependencies) *InterventionService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &InterventionService{
		tenants:       deps.Tenants,
		interventions: deps.InterventionRepo,
		tickets:       deps.TicketRepo,
		activity:      deps.Activity,
		dispatcher:    deps.Dispatcher,
		now:           now,
	}
}

// InterventionCreateInput describes a new work session. LaborCost and
// PartsCost, when set, become itemized cost lines in the same transaction.
type InterventionCreateInput struct {
	TicketID        string
	TechnicianID    string
	Type            domain.InterventionType
	Description     string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int32
	Status          domain.InterventionStatus
	Notes           *string
	LaborCost       *float64
	PartsCost       *float64
}

// InterventionUpdateInput is a partial update; nil fields are untouched.
type InterventionUpdateInput struct {
	Type            *domain.InterventionType
	Description     *string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes *int32
	Status          *domain.InterventionStatus
	Notes           *string
}

// CostInput describes one itemized cost line.
type CostInput struct {
	Description string
	CostType    domain.CostType
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64
}

// InterventionStats is the on-demand workload summary.
type InterventionStats struct {
	ByType                 []repository.InterventionTypeStat `json:"by_type"`
	ByTechnician           []repository.TechnicianStat       `json:"by_technician"`
	AverageDurationMinutes *float64                          `json:"average_duration_minutes"`
}

// Create records a work session against a live ticket and logs the
// intervention_added activity in the same transaction.
func (s *InterventionService) Create(ctx context.Context, tenantID, actorID string, input InterventionCreateInput) (*domain.Intervention, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.TicketID == "" || input.TechnicianID == "" || input.Description == "" {
		return nil, apperrors.NewValidationError("ticket_id, technician_id and description are required", nil)
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("invalid intervention type", map[string]any{"type": input.Type})
	}
	if input.Status == "" {
		input.Status = domain.InterventionStatusPending
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid intervention status", map[string]any{"status": input.Status})
	}
	if input.StartTime.IsZero() {
		input.StartTime = s.now()
	}
	if input.EndTime != nil && input.EndTime.Before(input.StartTime) {
		return nil, apperrors.NewValidationError("end_time precedes start_time", nil)
	}
	if input.LaborCost != nil && *input.LaborCost < 0 {
		return nil, apperrors.NewValidationError("labor cost cannot be negative", nil)
	}
	if input.PartsCost != nil && *input.PartsCost < 0 {
		return nil, apperrors.NewValidationError("parts cost cannot be negative", nil)
	}

	var intervention *domain.Intervention
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		ticket, err := s.tickets.GetByID(ctx, q, input.TicketID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
			}
			return apperrors.MapError(err)
		}

		intervention = &domain.Intervention{
			TicketID:        ticket.ID,
			TechnicianID:    input.TechnicianID,
			Type:            input.Type,
			Description:     input.Description,
			StartTime:       input.StartTime,
			EndTime:         input.EndTime,
			DurationMinutes: input.DurationMinutes,
			Status:          input.Status,
			Notes:           input.Notes,
		}
		if err := s.interventions.Create(ctx, q, intervention); err != nil {
			return err
		}

		if input.LaborCost != nil && *input.LaborCost > 0 {
			if err := s.addCostLine(ctx, q, intervention, CostInput{
				Description: "Labor",
				CostType:    domain.CostTypeLabor,
				Quantity:    1,
				UnitPrice:   *input.LaborCost,
				TotalPrice:  *input.LaborCost,
			}); err != nil {
				return err
			}
		}
		if input.PartsCost != nil && *input.PartsCost > 0 {
			if err := s.addCostLine(ctx, q, intervention, CostInput{
				Description: "Parts",
				CostType:    domain.CostTypePart,
				Quantity:    1,
				UnitPrice:   *input.PartsCost,
				TotalPrice:  *input.PartsCost,
			}); err != nil {
				return err
			}
		}
		intervention.SumCosts()

		_, err = s.activity.Log(ctx, q, ticket.ID, domain.ActivityInterventionAdded, actorOrNil(actorID),
			"Intervention recorded by technician",
			map[string]any{
				"intervention_id": intervention.ID,
				"technician_id":   intervention.TechnicianID,
				"type":            string(intervention.Type),
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventInterventionAdded,
			TenantID:    tenantID,
			TicketID:    intervention.TicketID,
			ActorUserID: actorOrNil(actorID),
			Timestamp:   s.now(),
			Payload: events.InterventionAddedPayload{
				InterventionID: intervention.ID,
				TechnicianID:   intervention.TechnicianID,
				Type:           intervention.Type,
			},
		})
	}
	return intervention, nil
}

// Update applies a partial update to an intervention.
func (s *InterventionService) Update(ctx context.Context, tenantID, interventionID string, input InterventionUpdateInput) (*domain.Intervention, error) {
	var intervention *domain.Intervention
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		var err error
		intervention, err = s.getIntervention(ctx, q, interventionID)
		if err != nil {
			return err
		}

		if input.Type != nil {
			if !input.Type.Valid() {
				return apperrors.NewValidationError("invalid intervention type", map[string]any{"type": *input.Type})
			}
			intervention.Type = *input.Type
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return apperrors.NewValidationError("invalid intervention status", map[string]any{"status": *input.Status})
			}
			intervention.Status = *input.Status
		}
		if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
			intervention.Description = strings.TrimSpace(*input.Description)
		}
		if input.StartTime != nil {
			intervention.StartTime = *input.StartTime
		}
		if input.EndTime != nil {
			intervention.EndTime = input.EndTime
		}
		if input.DurationMinutes != nil {
			intervention.DurationMinutes = input.DurationMinutes
		}
		if input.Notes != nil {
			intervention.Notes = input.Notes
		}
		if intervention.EndTime != nil && intervention.EndTime.Before(intervention.StartTime) {
			return apperrors.NewValidationError("end_time precedes start_time", nil)
		}

		return s.interventions.Update(ctx, q, intervention)
	})
	if err != nil {
		return nil, err
	}
	return intervention, nil
}

// Get fetches one intervention with its cost lines attached.
func (s *InterventionService) Get(ctx context.Context, tenantID, interventionID string) (*domain.Intervention, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	intervention, err := s.getIntervention(ctx, db, interventionID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCosts(ctx, db, []*domain.Intervention{intervention}); err != nil {
		return nil, err
	}
	return intervention, nil
}

// List returns interventions matching the filter, costs attached.
func (s *InterventionService) List(ctx context.Context, tenantID string, filter repository.InterventionFilter) ([]domain.Intervention, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	interventions, err := s.interventions.List(ctx, db, filter)
	if err != nil {
		return nil, err
	}
	refs := make([]*domain.Intervention, len(interventions))
	for i := range interventions {
		refs[i] = &interventions[i]
	}
	if err := s.attachCosts(ctx, db, refs); err != nil {
		return nil, err
	}
	return interventions, nil
}

// Count returns the number of interventions matching the filter.
func (s *InterventionService) Count(ctx context.Context, tenantID string, filter repository.InterventionFilter) (int64, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return s.interventions.Count(ctx, db, filter)
}

// AddCost appends one cost line to a live intervention.
func (s *InterventionService) AddCost(ctx context.Context, tenantID, interventionID string, input CostInput) (*domain.InterventionCost, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return nil, apperrors.NewValidationError("cost description required", nil)
	}
	if !input.CostType.Valid() {
		return nil, apperrors.NewValidationError("invalid cost type", map[string]any{"cost_type": input.CostType})
	}
	if input.Quantity < 0 || input.UnitPrice < 0 || input.TotalPrice < 0 {
		return nil, apperrors.NewValidationError("cost amounts cannot be negative", nil)
	}

	var cost *domain.InterventionCost
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		intervention, err := s.getIntervention(ctx, q, interventionID)
		if err != nil {
			return err
		}
		cost = &domain.InterventionCost{
			InterventionID: intervention.ID,
			Description:    input.Description,
			CostType:       input.CostType,
			Quantity:       input.Quantity,
			UnitPrice:      input.UnitPrice,
			TotalPrice:     input.TotalPrice,
		}
		return s.interventions.AddCost(ctx, q, cost)
	})
	if err != nil {
		return nil, err
	}
	return cost, nil
}

// Delete soft-deletes an intervention. Its cost lines stay behind the soft
// delete and drop out of ticket totals with it.
func (s *InterventionService) Delete(ctx context.Context, tenantID, interventionID string) error {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := s.interventions.SoftDelete(ctx, db, interventionID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("intervention", map[string]any{"intervention_id": interventionID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// TicketTotal returns the summed cost of a ticket's live interventions.
func (s *InterventionService) TicketTotal(ctx context.Context, tenantID, ticketID string) (float64, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return s.interventions.TicketTotalCost(ctx, db, ticketID)
}

// Stats aggregates intervention workload per type and technician.
func (s *InterventionService) Stats(ctx context.Context, tenantID string) (*InterventionStats, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats := &InterventionStats{}
	if stats.ByType, err = s.interventions.StatsByType(ctx, db); err != nil {
		return nil, err
	}
	if stats.ByTechnician, err = s.interventions.StatsByTechnician(ctx, db); err != nil {
		return nil, err
	}
	if stats.AverageDurationMinutes, err = s.interventions.AverageDurationMinutes(ctx, db); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *InterventionService) getIntervention(ctx context.Context, q persistence.Querier, id string) (*domain.Intervention, error) {
	intervention, err := s.interventions.GetByID(ctx, q, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("intervention", map[string]any{"intervention_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return intervention, nil
}

func (s *InterventionService) addCostLine(ctx context.Context, q persistence.Querier, intervention *domain.Intervention, input CostInput) error {
	cost := domain.InterventionCost{
		InterventionID: intervention.ID,
		Description:    input.Description,
		CostType:       input.CostType,
		Quantity:       input.Quantity,
		UnitPrice:      input.UnitPrice,
		TotalPrice:     input.TotalPrice,
	}
	if err := s.interventions.AddCost(ctx, q, &cost); err != nil {
		return err
	}
	intervention.Costs = append(intervention.Costs, cost)
	return nil
}

func (s *InterventionService) attachCosts(ctx context.Context, q persistence.Querier, interventions []*domain.Intervention) error {
	if len(interventions) == 0 {
		return nil
	}
	ids := make([]string, len(interventions))
	for i, intervention := range interventions {
		ids[i] = intervention.ID
	}
	costs, err := s.interventions.ListCosts(ctx, q, ids)
	if err != nil {
		return err
	}
	for _, intervention := range interventions {
		intervention.Costs = costs[intervention.ID]
		intervention.SumCosts()
	}
	return nil
}
