package service

import (
	"context"
	"strings"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/tenant"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// TicketTypeService manages the administrator-defined ticket catalog.
type TicketTypeService struct {
	tenants tenant.Store
	types   repository.TicketTypeRepository
}

// NewTicketTypeService constructs the service.
func NewTicketTypeService(tenants tenant.Store, types repository.TicketTypeRepository) *TicketTypeService {
	return &TicketTypeService{tenants: tenants, types: types}
}

// TicketTypeInput carries create/update payload for a ticket type.
type TicketTypeInput struct {
	Name        string
	Description string
	SLAHours    *int32
	Icon        string
	Color       string
}

func (i *TicketTypeInput) validate() error {
	i.Name = strings.TrimSpace(i.Name)
	if i.Name == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	if i.SLAHours != nil && *i.SLAHours <= 0 {
		return apperrors.NewValidationError("sla_hours must be positive when set", map[string]any{"sla_hours": *i.SLAHours})
	}
	return nil
}

// Create registers a new ticket type.
func (s *TicketTypeService) Create(ctx context.Context, tenantID string, input TicketTypeInput) (*domain.TicketType, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticketType := &domain.TicketType{
		Name:        input.Name,
		Description: input.Description,
		SLAHours:    input.SLAHours,
		Icon:        input.Icon,
		Color:       input.Color,
	}
	if err := s.types.Create(ctx, db, ticketType); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticketType, nil
}

// Update replaces a ticket type's definition. A changed SLA budget affects
// future reads of existing tickets too: the snapshot is derived, not stored.
func (s *TicketTypeService) Update(ctx context.Context, tenantID, typeID string, input TicketTypeInput) (*domain.TicketType, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticketType, err := s.getType(ctx, db, typeID)
	if err != nil {
		return nil, err
	}
	ticketType.Name = input.Name
	ticketType.Description = input.Description
	ticketType.SLAHours = input.SLAHours
	ticketType.Icon = input.Icon
	ticketType.Color = input.Color
	if err := s.types.Update(ctx, db, ticketType); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket type", map[string]any{"ticket_type_id": typeID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticketType, nil
}

// Get fetches one ticket type.
func (s *TicketTypeService) Get(ctx context.Context, tenantID, typeID string) (*domain.TicketType, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.getType(ctx, db, typeID)
}

// List returns all live ticket types, sorted by name.
func (s *TicketTypeService) List(ctx context.Context, tenantID string) ([]domain.TicketType, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.types.List(ctx, db)
}

// Delete soft-deletes a ticket type. Types still referenced by live tickets
// cannot be removed.
func (s *TicketTypeService) Delete(ctx context.Context, tenantID, typeID string) error {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return err
	}
	inUse, err := s.types.HasActiveTickets(ctx, db, typeID)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewConflict("ticket type is referenced by active tickets", map[string]any{"ticket_type_id": typeID})
	}
	if err := s.types.SoftDelete(ctx, db, typeID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("ticket type", map[string]any{"ticket_type_id": typeID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketTypeService) getType(ctx context.Context, q persistence.Querier, typeID string) (*domain.TicketType, error) {
	ticketType, err := s.types.GetByID(ctx, q, typeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket type", map[string]any{"ticket_type_id": typeID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticketType, nil
}
