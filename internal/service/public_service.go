package service

import (
	"context"
	"strings"
	"time"

	"github.com/atlasdesk/support-service/internal/config"
	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/sla"
	"github.com/atlasdesk/support-service/internal/tenant"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// PublicService is the unauthenticated access channel. Callers hold nothing
// but a ticket's unique code; every response is a deliberately narrowed
// projection that never leaks internal notes or actor ids.
type PublicService struct {
	tenants       tenant.Store
	tickets       repository.TicketRepository
	types         repository.TicketTypeRepository
	users         repository.UserRepository
	catalog       repository.CatalogRepository
	interventions repository.InterventionRepository
	activities    repository.ActivityRepository
	core          *TicketService
	intake        config.PublicIntakeConfig
	now           func() time.Time
}

// PublicDependencies bundles collaborators for the public service.
type PublicDependencies struct {
	Tenants          tenant.Store
	TicketRepo       repository.TicketRepository
	TypeRepo         repository.TicketTypeRepository
	UserRepo         repository.UserRepository
	CatalogRepo      repository.CatalogRepository
	InterventionRepo repository.InterventionRepository
	ActivityRepo     repository.ActivityRepository
	Core             *TicketService
	Intake           config.PublicIntakeConfig
	Now              func() time.Time
}

// NewPublicService constructs the service.
func NewPublicService(deps PublicDependencies) *PublicService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &PublicService{
		tenants:       deps.Tenants,
		tickets:       deps.TicketRepo,
		types:         deps.TypeRepo,
		users:         deps.UserRepo,
		catalog:       deps.CatalogRepo,
		interventions: deps.InterventionRepo,
		activities:    deps.ActivityRepo,
		core:          deps.Core,
		intake:        deps.Intake,
		now:           now,
	}
}

// PublicPerson is the name-only projection of a user.
type PublicPerson struct {
	Name string `json:"name"`
}

// PublicClient is the name-only projection of a client account.
type PublicClient struct {
	Name string `json:"name"`
}

// PublicEquipment is the name-only projection of a serviced equipment record.
type PublicEquipment struct {
	Name string `json:"name"`
}

// PublicTicketType projects a ticket type for public consumption.
type PublicTicketType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SLAHours *int32 `json:"sla_hours,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}

// PublicTicketView is the client-safe ticket projection.
type PublicTicketView struct {
	TicketNumber string                `json:"ticket_number"`
	UniqueCode   string                `json:"unique_code"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	OpenedAt     time.Time             `json:"opened_at"`
	ExpectedAt   *time.Time            `json:"expected_at,omitempty"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	Rating       *int16                `json:"rating,omitempty"`
	Type         *PublicTicketType     `json:"type,omitempty"`
	Client       *PublicClient         `json:"client,omitempty"`
	Equipment    *PublicEquipment      `json:"equipment,omitempty"`
	Requester    *PublicPerson         `json:"requester,omitempty"`
	AssignedTo   *PublicPerson         `json:"assigned_to,omitempty"`
	SLA          *sla.Snapshot         `json:"sla,omitempty"`
}

// PublicInterventionView projects a work session with its cost breakdown.
// Internal ids and technician identity stay behind the boundary.
type PublicInterventionView struct {
	Type        domain.InterventionType   `json:"type"`
	Description string                    `json:"description"`
	StartTime   time.Time                 `json:"start_time"`
	EndTime     *time.Time                `json:"end_time,omitempty"`
	Status      domain.InterventionStatus `json:"status"`
	Costs       []PublicCostView          `json:"costs"`
	TotalCost   float64                   `json:"total_cost"`
}

// PublicCostView is one itemized cost line of a work session.
type PublicCostView struct {
	Description string          `json:"description"`
	CostType    domain.CostType `json:"cost_type"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	TotalPrice  float64         `json:"total_price"`
}

// PublicCommentView is one externally visible comment.
type PublicCommentView struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicCreateInput is the anonymous intake payload. ClientID, when present,
// links the ticket to an existing client account.
type PublicCreateInput struct {
	TicketTypeID string
	Title        string
	Description  string
	Priority     domain.TicketPriority
	Location     *string
	ClientID     *string
}

// PublicCreateResult returns only what the caller needs to track the ticket.
type PublicCreateResult struct {
	ID           string `json:"id"`
	TicketNumber string `json:"ticket_number"`
	UniqueCode   string `json:"unique_code"`
}

// GetByCode looks a ticket up by its access code and returns the public
// projection with nested names and the SLA snapshot.
func (s *PublicService) GetByCode(ctx context.Context, tenantID, code string) (*PublicTicketView, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.ticketByCode(ctx, db, code)
	if err != nil {
		return nil, err
	}

	view := &PublicTicketView{
		TicketNumber: ticket.TicketNumber,
		UniqueCode:   ticket.UniqueCode,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		OpenedAt:     ticket.OpenedAt,
		ExpectedAt:   ticket.ExpectedAt,
		CompletedAt:  ticket.CompletedAt,
		Rating:       ticket.Rating,
	}

	if ticketType, err := s.types.GetByID(ctx, db, ticket.TicketTypeID); err == nil {
		view.Type = &PublicTicketType{
			ID:       ticketType.ID,
			Name:     ticketType.Name,
			SLAHours: ticketType.SLAHours,
			Icon:     ticketType.Icon,
			Color:    ticketType.Color,
		}
		view.SLA = sla.Evaluate(ticket.OpenedAt, ticketType.SLAHours, ticket.CompletedAt, s.now())
	} else if !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}

	if ticket.ClientID != nil {
		if client, err := s.catalog.GetClient(ctx, db, *ticket.ClientID); err == nil {
			view.Client = &PublicClient{Name: client.Name}
		} else if !apperrors.IsNotFound(err) {
			return nil, apperrors.MapError(err)
		}
	}
	if ticket.EquipmentID != nil {
		if equipment, err := s.catalog.GetEquipment(ctx, db, *ticket.EquipmentID); err == nil {
			view.Equipment = &PublicEquipment{Name: equipment.Name}
		} else if !apperrors.IsNotFound(err) {
			return nil, apperrors.MapError(err)
		}
	}
	if requester, err := s.users.GetByID(ctx, db, ticket.RequesterID); err == nil {
		view.Requester = &PublicPerson{Name: requester.Name}
	} else if !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}
	if ticket.AssignedToID != nil {
		if assignee, err := s.users.GetByID(ctx, db, *ticket.AssignedToID); err == nil {
			view.AssignedTo = &PublicPerson{Name: assignee.Name}
		} else if !apperrors.IsNotFound(err) {
			return nil, apperrors.MapError(err)
		}
	}

	return view, nil
}

// Create opens a ticket through anonymous intake. The ticket is attributed to
// the configured intake user; when that user is not provisioned the fixed
// fallback is tried before giving up.
func (s *PublicService) Create(ctx context.Context, tenantID string, input PublicCreateInput) (*PublicCreateResult, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	requester, err := s.resolveIntakeUser(ctx, db)
	if err != nil {
		return nil, err
	}

	ticket, err := s.core.Create(ctx, tenantID, "", TicketCreateInput{
		TicketTypeID: input.TicketTypeID,
		ClientID:     input.ClientID,
		Title:        input.Title,
		Description:  input.Description,
		Priority:     input.Priority,
		RequesterID:  requester.ID,
		Location:     input.Location,
	})
	if err != nil {
		return nil, err
	}
	return &PublicCreateResult{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		UniqueCode:   ticket.UniqueCode,
	}, nil
}

// CloseByCode closes a ticket through the public channel. The audit actor is
// the ticket's requester: the code holder acts on the requester's behalf.
func (s *PublicService) CloseByCode(ctx context.Context, tenantID, code, resolution string) (*PublicTicketView, error) {
	ticket, err := s.resolveCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.core.closeTicket(ctx, tenantID, ticket.ID, resolution, requesterActor); err != nil {
		return nil, err
	}
	return s.GetByCode(ctx, tenantID, code)
}

// ReopenByCode reopens a completed ticket through the public channel.
func (s *PublicService) ReopenByCode(ctx context.Context, tenantID, code, reason string) (*PublicTicketView, error) {
	ticket, err := s.resolveCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.core.reopenTicket(ctx, tenantID, ticket.ID, reason, requesterActor); err != nil {
		return nil, err
	}
	return s.GetByCode(ctx, tenantID, code)
}

// RateByCode records a satisfaction rating through the public channel.
func (s *PublicService) RateByCode(ctx context.Context, tenantID, code string, rating int16, comment *string) (*PublicTicketView, error) {
	ticket, err := s.resolveCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.core.Rate(ctx, tenantID, ticket.ID, rating, comment); err != nil {
		return nil, err
	}
	return s.GetByCode(ctx, tenantID, code)
}

// InterventionsByCode lists a ticket's work sessions with their nested cost
// breakdown, mirroring what the authenticated listing returns for one ticket.
func (s *PublicService) InterventionsByCode(ctx context.Context, tenantID, code string) ([]PublicInterventionView, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.ticketByCode(ctx, db, code)
	if err != nil {
		return nil, err
	}
	interventions, err := s.interventions.List(ctx, db, repository.InterventionFilter{TicketID: &ticket.ID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(interventions))
	for i := range interventions {
		ids[i] = interventions[i].ID
	}
	costsByID := map[string][]domain.InterventionCost{}
	if len(ids) > 0 {
		if costsByID, err = s.interventions.ListCosts(ctx, db, ids); err != nil {
			return nil, err
		}
	}
	views := make([]PublicInterventionView, 0, len(interventions))
	for _, intervention := range interventions {
		view := PublicInterventionView{
			Type:        intervention.Type,
			Description: intervention.Description,
			StartTime:   intervention.StartTime,
			EndTime:     intervention.EndTime,
			Status:      intervention.Status,
			Costs:       make([]PublicCostView, 0, len(costsByID[intervention.ID])),
		}
		for _, line := range costsByID[intervention.ID] {
			view.Costs = append(view.Costs, PublicCostView{
				Description: line.Description,
				CostType:    line.CostType,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  line.TotalPrice,
			})
			view.TotalCost += line.TotalPrice
		}
		views = append(views, view)
	}
	return views, nil
}

// CommentsByCode lists a ticket's externally visible comments. Internal
// comments never cross this boundary.
func (s *PublicService) CommentsByCode(ctx context.Context, tenantID, code string) ([]PublicCommentView, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.ticketByCode(ctx, db, code)
	if err != nil {
		return nil, err
	}
	comments, err := s.activities.ListComments(ctx, db, ticket.ID, false)
	if err != nil {
		return nil, err
	}
	views := make([]PublicCommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, PublicCommentView{
			Body:      comment.Description,
			CreatedAt: comment.CreatedAt,
		})
	}
	return views, nil
}

// ListTypes exposes the ticket type catalog so intake forms can render it.
func (s *PublicService) ListTypes(ctx context.Context, tenantID string) ([]PublicTicketType, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	types, err := s.types.List(ctx, db)
	if err != nil {
		return nil, err
	}
	views := make([]PublicTicketType, 0, len(types))
	for _, ticketType := range types {
		views = append(views, PublicTicketType{
			ID:       ticketType.ID,
			Name:     ticketType.Name,
			SLAHours: ticketType.SLAHours,
			Icon:     ticketType.Icon,
			Color:    ticketType.Color,
		})
	}
	return views, nil
}

func (s *PublicService) resolveCode(ctx context.Context, tenantID, code string) (*domain.Ticket, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.ticketByCode(ctx, db, code)
}

func (s *PublicService) ticketByCode(ctx context.Context, q persistence.Querier, code string) (*domain.Ticket, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	ticket, err := s.tickets.GetByCode(ctx, q, code)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Unknown code and deleted ticket are indistinguishable on purpose.
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *PublicService) resolveIntakeUser(ctx context.Context, q persistence.Querier) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, q, s.intake.RequesterEmail)
	if err == nil {
		return user, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}
	user, err = s.users.GetByEmail(ctx, q, s.intake.FallbackEmail)
	if err == nil {
		return user, nil
	}
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewDependencyFailure("public intake user is not provisioned", err)
	}
	return nil, apperrors.MapError(err)
}

func requesterActor(ticket *domain.Ticket) *string {
	requester := ticket.RequesterID
	return &requester
}
