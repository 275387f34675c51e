package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/events"
	"github.com/atlasdesk/support-service/internal/identifier"
	"github.com/atlasdesk/support-service/internal/persistence"
	"github.com/atlasdesk/support-service/internal/repository"
	"github.com/atlasdesk/support-service/internal/sla"
	"github.com/atlasdesk/support-service/internal/tenant"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// NumberSequence reserves ticket numbers. Satisfied by identifier.Sequence.
type NumberSequence interface {
	Next(ctx context.Context, q persistence.Querier) (string, error)
}

// CodeSource produces collision-checked access codes. Satisfied by
// identifier.CodeGenerator.
type CodeSource interface {
	Generate(ctx context.Context, exists identifier.ExistsFunc) (string, error)
}

// TicketService is the ticket lifecycle manager. Every state change, whichever
// entry point it came through, runs through applyStatus and is written in the
// same transaction as its activity entry.
type TicketService struct {
	tenants    tenant.Store
	tickets    repository.TicketRepository
	types      repository.TicketTypeRepository
	stats      repository.TicketStatsRepository
	activity   *ActivityService
	sequence   NumberSequence
	codes      CodeSource
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Tenants    tenant.Store
	TicketRepo repository.TicketRepository
	TypeRepo   repository.TicketTypeRepository
	StatsRepo  repository.TicketStatsRepository
	Activity   *ActivityService
	Sequence   NumberSequence
	Codes      CodeSource
	Dispatcher events.Dispatcher
	Now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tenants:    deps.Tenants,
		tickets:    deps.TicketRepo,
		types:      deps.TypeRepo,
		stats:      deps.StatsRepo,
		activity:   deps.Activity,
		sequence:   deps.Sequence,
		codes:      deps.Codes,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// TicketCreateInput describes ticket creation payload. RequesterID defaults to
// the acting user when empty.
type TicketCreateInput struct {
	TicketTypeID string
	ClientID     *string
	EquipmentID  *string
	Title        string
	Description  string
	Priority     domain.TicketPriority
	Status       domain.TicketStatus
	RequesterID  string
	AssignedToID *string
	Location     *string
	ExpectedAt   *time.Time
}

// TicketUpdateInput describes a partial update. Nil fields are untouched; an
// empty AssignedToID clears the assignment.
type TicketUpdateInput struct {
	Title        *string
	Description  *string
	Priority     *domain.TicketPriority
	Status       *domain.TicketStatus
	AssignedToID *string
	Location     *string
	ExpectedAt   *time.Time
	ClientID     *string
	EquipmentID  *string
}

// TicketWithSLA pairs a ticket with its derived SLA snapshot. The snapshot is
// nil for SLA-exempt tickets.
type TicketWithSLA struct {
	Ticket domain.Ticket
	SLA    *sla.Snapshot
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	TicketTypeID *string
	ClientID     *string
	EquipmentID  *string
	RequesterID  *string
	AssignedToID *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	SearchTerm   *string
	OpenedFrom   *time.Time
	OpenedTo     *time.Time
	Limit        int
	Offset       int
}

// Create opens a new ticket: number and code are reserved, the row inserted
// and the created activity logged inside one transaction.
func (s *TicketService) Create(ctx context.Context, tenantID, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.TicketTypeID == "" || input.Title == "" || input.Description == "" {
		return nil, apperrors.NewValidationError("ticket_type_id, title and description are required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}
	if input.Status == "" {
		input.Status = domain.TicketStatusOpen
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
	}
	requesterID := input.RequesterID
	if requesterID == "" {
		requesterID = actorID
	}
	if requesterID == "" {
		return nil, apperrors.NewValidationError("requester is required", nil)
	}

	var ticket *domain.Ticket
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		if _, err := s.types.GetByID(ctx, q, input.TicketTypeID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFound("ticket type", map[string]any{"ticket_type_id": input.TicketTypeID})
			}
			return err
		}

		number, err := s.sequence.Next(ctx, q)
		if err != nil {
			return err
		}
		code, err := s.codes.Generate(ctx, func(ctx context.Context, candidate string) (bool, error) {
			return s.tickets.CodeExists(ctx, q, candidate)
		})
		if err != nil {
			return err
		}

		now := s.now()
		ticket = &domain.Ticket{
			TicketNumber: number,
			UniqueCode:   code,
			TicketTypeID: input.TicketTypeID,
			ClientID:     input.ClientID,
			EquipmentID:  input.EquipmentID,
			Title:        input.Title,
			Description:  input.Description,
			Priority:     input.Priority,
			Status:       input.Status,
			RequesterID:  requesterID,
			AssignedToID: input.AssignedToID,
			Location:     input.Location,
			OpenedAt:     now,
			ExpectedAt:   input.ExpectedAt,
		}
		if ticket.Status.IsCompleted() {
			completed := now
			ticket.CompletedAt = &completed
		}
		if err := s.tickets.Create(ctx, q, ticket); err != nil {
			return err
		}

		actor := actorOrNil(actorID)
		_, err = s.activity.Log(ctx, q, ticket.ID, domain.ActivityCreated, actor,
			"Ticket "+ticket.TicketNumber+" created",
			map[string]any{"ticket_number": ticket.TicketNumber})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventTicketCreated,
		TenantID:    tenantID,
		TicketID:    ticket.ID,
		ActorUserID: actorOrNil(actorID),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			TicketTypeID: ticket.TicketTypeID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// Update applies a partial update. One activity is logged per semantic change
// (status, priority, assignment), never a combined row, so the timeline stays
// filterable by change type.
func (s *TicketService) Update(ctx context.Context, tenantID, actorID, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		pending = pending[:0]
		var err error
		ticket, err = s.getTicket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		actor := actorOrNil(actorID)

		if input.Status != nil && *input.Status != ticket.Status {
			if !input.Status.Valid() {
				return apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
			}
			oldStatus := ticket.Status
			if err := applyStatus(ticket, *input.Status, s.now()); err != nil {
				return err
			}
			if _, err := s.activity.Log(ctx, q, ticket.ID, domain.ActivityStatusChanged, actor,
				"Status changed from "+string(oldStatus)+" to "+string(ticket.Status),
				map[string]any{"from": string(oldStatus), "to": string(ticket.Status)}); err != nil {
				return err
			}
			pending = append(pending, events.Event{
				Type: events.EventTicketStatusChanged, TenantID: tenantID, TicketID: ticket.ID, ActorUserID: actor,
				Payload: events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status},
			})
		}

		if input.Priority != nil && *input.Priority != ticket.Priority {
			if !input.Priority.Valid() {
				return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
			}
			oldPriority := ticket.Priority
			ticket.Priority = *input.Priority
			if _, err := s.activity.Log(ctx, q, ticket.ID, domain.ActivityPriorityChanged, actor,
				"Priority changed from "+string(oldPriority)+" to "+string(ticket.Priority),
				map[string]any{"from": string(oldPriority), "to": string(ticket.Priority)}); err != nil {
				return err
			}
			pending = append(pending, events.Event{
				Type: events.EventTicketPriorityChanged, TenantID: tenantID, TicketID: ticket.ID, ActorUserID: actor,
				Payload: events.TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: ticket.Priority},
			})
		}

		if input.AssignedToID != nil {
			var newAssignee *string
			if *input.AssignedToID != "" {
				newAssignee = input.AssignedToID
			}
			if !equalPtr(ticket.AssignedToID, newAssignee) {
				oldAssignee := ticket.AssignedToID
				ticket.AssignedToID = newAssignee
				activityType := domain.ActivityAssigned
				if oldAssignee != nil {
					activityType = domain.ActivityReassigned
				}
				if _, err := s.activity.Log(ctx, q, ticket.ID, activityType, actor,
					activityType.Label(),
					map[string]any{"from": ptrOrNil(oldAssignee), "to": ptrOrNil(newAssignee)}); err != nil {
					return err
				}
				pending = append(pending, events.Event{
					Type: events.EventTicketAssigned, TenantID: tenantID, TicketID: ticket.ID, ActorUserID: actor,
					Payload: events.TicketAssignedPayload{OldAssigneeID: oldAssignee, NewAssigneeID: newAssignee},
				})
			}
		}

		if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
			ticket.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
			ticket.Description = strings.TrimSpace(*input.Description)
		}
		if input.Location != nil {
			ticket.Location = input.Location
		}
		if input.ExpectedAt != nil {
			ticket.ExpectedAt = input.ExpectedAt
		}
		if input.ClientID != nil {
			ticket.ClientID = input.ClientID
		}
		if input.EquipmentID != nil {
			ticket.EquipmentID = input.EquipmentID
		}

		return s.tickets.Update(ctx, q, ticket)
	})
	if err != nil {
		return nil, err
	}

	for _, event := range pending {
		s.publish(ctx, event)
	}
	return ticket, nil
}

// Close moves a ticket to CLOSED and records the resolution.
func (s *TicketService) Close(ctx context.Context, tenantID, actorID, ticketID, resolution string) (*domain.Ticket, error) {
	return s.closeTicket(ctx, tenantID, ticketID, resolution, func(t *domain.Ticket) *string {
		return actorOrNil(actorID)
	})
}

// Reopen returns a completed ticket to REOPENED and clears its completion
// timestamp.
func (s *TicketService) Reopen(ctx context.Context, tenantID, actorID, ticketID, reason string) (*domain.Ticket, error) {
	return s.reopenTicket(ctx, tenantID, ticketID, reason, func(t *domain.Ticket) *string {
		return actorOrNil(actorID)
	})
}

// closeTicket is shared by the authenticated and public close paths; actorFor
// picks the audit actor once the ticket is loaded.
func (s *TicketService) closeTicket(ctx context.Context, tenantID, ticketID, resolution string, actorFor func(*domain.Ticket) *string) (*domain.Ticket, error) {
	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
		actor     *string
	)
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		var err error
		ticket, err = s.getTicket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status.IsCompleted() {
			return apperrors.NewConflict("ticket already closed", map[string]any{"status": ticket.Status})
		}
		oldStatus = ticket.Status
		if err := applyStatus(ticket, domain.TicketStatusClosed, s.now()); err != nil {
			return err
		}
		metadata := map[string]any{"from": string(oldStatus), "to": string(ticket.Status)}
		if resolution != "" {
			metadata["resolution"] = resolution
		}
		actor = actorFor(ticket)
		if _, err := s.activity.Log(ctx, q, ticket.ID, domain.ActivityClosed, actor,
			"Ticket closed", metadata); err != nil {
			return err
		}
		return s.tickets.Update(ctx, q, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketStatusChanged, TenantID: tenantID, TicketID: ticket.ID, ActorUserID: actor,
		Payload: events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status, Comment: resolution},
	})
	return ticket, nil
}

func (s *TicketService) reopenTicket(ctx context.Context, tenantID, ticketID, reason string, actorFor func(*domain.Ticket) *string) (*domain.Ticket, error) {
	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
		actor     *string
	)
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		var err error
		ticket, err = s.getTicket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if !ticket.Status.IsCompleted() {
			return apperrors.NewConflict("ticket is not completed", map[string]any{"status": ticket.Status})
		}
		oldStatus = ticket.Status
		if err := applyStatus(ticket, domain.TicketStatusReopened, s.now()); err != nil {
			return err
		}
		metadata := map[string]any{"from": string(oldStatus), "to": string(ticket.Status)}
		if reason != "" {
			metadata["reason"] = reason
		}
		actor = actorFor(ticket)
		if _, err := s.activity.Log(ctx, q, ticket.ID, domain.ActivityReopened, actor,
			"Ticket reopened", metadata); err != nil {
			return err
		}
		return s.tickets.Update(ctx, q, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketStatusChanged, TenantID: tenantID, TicketID: ticket.ID, ActorUserID: actor,
		Payload: events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status, Comment: reason},
	})
	return ticket, nil
}

// AddComment appends a comment to the timeline; ticket fields stay untouched.
func (s *TicketService) AddComment(ctx context.Context, tenantID, actorID, ticketID, body string, isInternal bool) (*domain.Activity, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}

	var activity *domain.Activity
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		ticket, err := s.getTicket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		activity, err = s.activity.Log(ctx, q, ticket.ID, domain.ActivityCommentAdded, actorOrNil(actorID),
			body, map[string]any{domain.MetadataKeyInternal: isInternal})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketCommentAdded, TenantID: tenantID, TicketID: ticketID, ActorUserID: actorOrNil(actorID),
		Payload: events.TicketCommentAddedPayload{
			ActivityID:  activity.ID,
			IsInternal:  isInternal,
			BodyPreview: stringPreview(body, 120),
		},
	})
	return activity, nil
}

// Rate records a satisfaction rating. Only completed tickets can be rated; no
// status change is involved.
func (s *TicketService) Rate(ctx context.Context, tenantID, ticketID string, rating int16, comment *string) (*domain.Ticket, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	var ticket *domain.Ticket
	err := s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		var err error
		ticket, err = s.getTicket(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if ticket.CompletedAt == nil {
			return apperrors.NewConflict("cannot rate a ticket that is not completed", nil)
		}
		ticket.Rating = &rating
		ticket.RatingComment = comment
		return s.tickets.Update(ctx, q, ticket)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Delete removes a ticket permanently. Tickets with interventions cannot be
// deleted; the intervention ledger is never cascaded away.
func (s *TicketService) Delete(ctx context.Context, tenantID, ticketID string) error {
	return s.tenants.WithTx(ctx, tenantID, func(q persistence.Querier) error {
		if _, err := s.getTicket(ctx, q, ticketID); err != nil {
			return err
		}
		hasInterventions, err := s.tickets.HasInterventions(ctx, q, ticketID)
		if err != nil {
			return err
		}
		if hasInterventions {
			return apperrors.NewConflict("ticket has interventions and cannot be deleted", nil)
		}
		return s.tickets.Delete(ctx, q, ticketID)
	})
}

// Get fetches one ticket with its SLA snapshot.
func (s *TicketService) Get(ctx context.Context, tenantID, ticketID string) (*TicketWithSLA, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, db, ticketID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshotFor(ctx, db, ticket)
	if err != nil {
		return nil, err
	}
	return &TicketWithSLA{Ticket: *ticket, SLA: snapshot}, nil
}

// GetByCode fetches one ticket by its public access code.
func (s *TicketService) GetByCode(ctx context.Context, tenantID, code string) (*TicketWithSLA, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByCode(ctx, db, code)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, apperrors.MapError(err)
	}
	snapshot, err := s.snapshotFor(ctx, db, ticket)
	if err != nil {
		return nil, err
	}
	return &TicketWithSLA{Ticket: *ticket, SLA: snapshot}, nil
}

// List returns tickets matching the filter, each with its SLA snapshot.
func (s *TicketService) List(ctx context.Context, tenantID string, filter TicketListFilter) ([]TicketWithSLA, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, db, repoFilter(filter))
	if err != nil {
		return nil, err
	}

	budgets, err := s.slaBudgets(ctx, db)
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]TicketWithSLA, 0, len(tickets))
	for _, ticket := range tickets {
		result = append(result, TicketWithSLA{
			Ticket: ticket,
			SLA:    sla.Evaluate(ticket.OpenedAt, budgets[ticket.TicketTypeID], ticket.CompletedAt, now),
		})
	}
	return result, nil
}

// Count returns the number of tickets matching the filter.
func (s *TicketService) Count(ctx context.Context, tenantID string, filter TicketListFilter) (int64, error) {
	db, err := s.tenants.Handle(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return s.tickets.Count(ctx, db, repoFilter(filter))
}

func (s *TicketService) getTicket(ctx context.Context, q persistence.Querier, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, q, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) snapshotFor(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) (*sla.Snapshot, error) {
	ticketType, err := s.types.GetByID(ctx, q, ticket.TicketTypeID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil // type soft-deleted after the fact: ticket becomes SLA exempt
		}
		return nil, err
	}
	return sla.Evaluate(ticket.OpenedAt, ticketType.SLAHours, ticket.CompletedAt, s.now()), nil
}

func (s *TicketService) slaBudgets(ctx context.Context, q persistence.Querier) (map[string]*int32, error) {
	types, err := s.types.List(ctx, q)
	if err != nil {
		return nil, err
	}
	budgets := make(map[string]*int32, len(types))
	for i := range types {
		budgets[types[i].ID] = types[i].SLAHours
	}
	return budgets, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// applyStatus is the single place a ticket's status ever changes. It owns the
// coupling between status and CompletedAt: terminal statuses stamp completion,
// everything else clears it, whichever entry point asked for the change.
func applyStatus(ticket *domain.Ticket, next domain.TicketStatus, now time.Time) error {
	if next == ticket.Status {
		return nil
	}
	if !domain.CanTransition(ticket.Status, next) {
		return apperrors.NewInvalidTransition(string(ticket.Status), string(next))
	}
	ticket.Status = next
	if next.IsCompleted() {
		if ticket.CompletedAt == nil {
			completed := now
			ticket.CompletedAt = &completed
		}
	} else {
		ticket.CompletedAt = nil
	}
	return nil
}

func repoFilter(filter TicketListFilter) repository.TicketFilter {
	return repository.TicketFilter{
		TicketTypeID: filter.TicketTypeID,
		ClientID:     filter.ClientID,
		EquipmentID:  filter.EquipmentID,
		RequesterID:  filter.RequesterID,
		AssignedToID: filter.AssignedToID,
		Statuses:     filter.Statuses,
		Priorities:   filter.Priorities,
		SearchTerm:   filter.SearchTerm,
		OpenedFrom:   filter.OpenedFrom,
		OpenedTo:     filter.OpenedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
}

func actorOrNil(actorID string) *string {
	if actorID == "" {
		return nil
	}
	return &actorID
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ptrOrNil(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
