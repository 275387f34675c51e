package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdesk/support-service/internal/domain"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

type ticketFixture struct {
	service    *TicketService
	tickets    *memTicketRepo
	types      *memTypeRepo
	activities *memActivityRepo
	ticketType *domain.TicketType
	clock      *testClock
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newMemTicketRepo()
	types := newMemTypeRepo()
	activities := newMemActivityRepo()
	clock := &testClock{current: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}

	slaHours := int32(24)
	ticketType := types.add("Hardware", &slaHours)

	store := fakeStore{}
	service := NewTicketService(TicketDependencies{
		Tenants:    store,
		TicketRepo: tickets,
		TypeRepo:   types,
		StatsRepo:  &memStatsRepo{},
		Activity:   NewActivityService(store, activities),
		Sequence:   &fakeSequence{},
		Codes:      &fakeCodes{},
		Now:        clock.now,
	})
	return &ticketFixture{
		service:    service,
		tickets:    tickets,
		types:      types,
		activities: activities,
		ticketType: ticketType,
		clock:      clock,
	}
}

func (f *ticketFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.Create(context.Background(), "acme", "user-1", TicketCreateInput{
		TicketTypeID: f.ticketType.ID,
		Title:        "Printer jams on duplex",
		Description:  "Paper jams whenever duplex printing is selected.",
		Priority:     domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketReservesIdentifiersAndLogsCreation(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	assert.Equal(t, "TCK-000001", ticket.TicketNumber)
	assert.Len(t, ticket.UniqueCode, 8)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, fixture.clock.current, ticket.OpenedAt)
	assert.Nil(t, ticket.CompletedAt)
	assert.Equal(t, "user-1", ticket.RequesterID)

	created := fixture.activities.byType(ticket.ID, domain.ActivityCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "user-1", *created[0].ActorUserID)

	second := fixture.createTicket(t)
	assert.Equal(t, "TCK-000002", second.TicketNumber)
	assert.NotEqual(t, ticket.UniqueCode, second.UniqueCode)
}

func TestCreateTicketRejectsUnknownType(t *testing.T) {
	fixture := newTicketFixture(t)
	_, err := fixture.service.Create(context.Background(), "acme", "user-1", TicketCreateInput{
		TicketTypeID: "type-missing",
		Title:        "t",
		Description:  "d",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestUpdateLogsOneActivityPerSemanticChange(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	status := domain.TicketStatusInProgress
	priority := domain.TicketPriorityUrgent
	assignee := "tech-7"
	updated, err := fixture.service.Update(context.Background(), "acme", "user-1", ticket.ID, TicketUpdateInput{
		Status:       &status,
		Priority:     &priority,
		AssignedToID: &assignee,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, "tech-7", *updated.AssignedToID)

	statusChanges := fixture.activities.byType(ticket.ID, domain.ActivityStatusChanged)
	require.Len(t, statusChanges, 1)
	assert.Equal(t, "OPEN", statusChanges[0].Metadata["from"])
	assert.Equal(t, "IN_PROGRESS", statusChanges[0].Metadata["to"])

	priorityChanges := fixture.activities.byType(ticket.ID, domain.ActivityPriorityChanged)
	require.Len(t, priorityChanges, 1)
	assert.Equal(t, "HIGH", priorityChanges[0].Metadata["from"])
	assert.Equal(t, "URGENT", priorityChanges[0].Metadata["to"])

	assert.Len(t, fixture.activities.byType(ticket.ID, domain.ActivityAssigned), 1)
	assert.Empty(t, fixture.activities.byType(ticket.ID, domain.ActivityReassigned))

	// A second assignee logs a reassignment, not another assignment.
	other := "tech-9"
	_, err = fixture.service.Update(context.Background(), "acme", "user-1", ticket.ID, TicketUpdateInput{AssignedToID: &other})
	require.NoError(t, err)
	assert.Len(t, fixture.activities.byType(ticket.ID, domain.ActivityAssigned), 1)
	assert.Len(t, fixture.activities.byType(ticket.ID, domain.ActivityReassigned), 1)
}

func TestUpdateRejectsIllegalTransition(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	status := domain.TicketStatusReopened
	_, err := fixture.service.Update(context.Background(), "acme", "user-1", ticket.ID, TicketUpdateInput{Status: &status})
	require.Error(t, err)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.ToDomainError(err).Code)

	// Nothing was persisted: the stored ticket is untouched and no activity
	// was written.
	stored, err := fixture.tickets.GetByID(context.Background(), nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Empty(t, fixture.activities.byType(ticket.ID, domain.ActivityStatusChanged))
}

func TestCancelledIsTerminal(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	cancelled := domain.TicketStatusCancelled
	_, err := fixture.service.Update(context.Background(), "acme", "user-1", ticket.ID, TicketUpdateInput{Status: &cancelled})
	require.NoError(t, err)

	open := domain.TicketStatusOpen
	_, err = fixture.service.Update(context.Background(), "acme", "user-1", ticket.ID, TicketUpdateInput{Status: &open})
	require.Error(t, err)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.ToDomainError(err).Code)
}

func TestCloseSetsCompletionAndReopenClearsIt(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	fixture.clock.advance(2 * time.Hour)
	closed, err := fixture.service.Close(context.Background(), "acme", "user-1", ticket.ID, "Replaced the duplex roller")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.CompletedAt)
	assert.Equal(t, fixture.clock.current, *closed.CompletedAt)

	closedActivities := fixture.activities.byType(ticket.ID, domain.ActivityClosed)
	require.Len(t, closedActivities, 1)
	assert.Equal(t, "Replaced the duplex roller", closedActivities[0].Metadata["resolution"])

	// Closing twice conflicts.
	_, err = fixture.service.Close(context.Background(), "acme", "user-1", ticket.ID, "again")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	reopened, err := fixture.service.Reopen(context.Background(), "acme", "user-2", ticket.ID, "Still jamming")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReopened, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)

	reopenActivities := fixture.activities.byType(ticket.ID, domain.ActivityReopened)
	require.Len(t, reopenActivities, 1)
	assert.Equal(t, "Still jamming", reopenActivities[0].Metadata["reason"])
}

func TestReopenRequiresCompletedTicket(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	_, err := fixture.service.Reopen(context.Background(), "acme", "user-1", ticket.ID, "why not")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestStatusTransitionViaUpdateClearsCompletionToo(t *testing.T) {
	// The reopen invariant holds on the generic update path as well, since both
	// paths run through the same status routine.
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	_, err := fixture.service.Close(context.Background(), "acme", "user-1", ticket.ID, "done")
	require.NoError(t, err)

	status := domain.TicketStatusReopened
	updated, err := fixture.service.Update(context.Background(), "acme", "user-1", ticket.ID, TicketUpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusReopened, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestRateRequiresCompletion(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	_, err := fixture.service.Rate(context.Background(), "acme", ticket.ID, 4, nil)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	_, err = fixture.service.Close(context.Background(), "acme", "user-1", ticket.ID, "done")
	require.NoError(t, err)

	comment := "quick fix"
	rated, err := fixture.service.Rate(context.Background(), "acme", ticket.ID, 4, &comment)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, int16(4), *rated.Rating)

	_, err = fixture.service.Rate(context.Background(), "acme", ticket.ID, 0, nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestDeleteBlockedWhileInterventionsExist(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	fixture.tickets.interventions[ticket.ID] = true
	err := fixture.service.Delete(context.Background(), "acme", ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	fixture.tickets.interventions[ticket.ID] = false
	require.NoError(t, fixture.service.Delete(context.Background(), "acme", ticket.ID))

	_, err = fixture.service.Get(context.Background(), "acme", ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAddCommentLeavesTicketUntouched(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	activity, err := fixture.service.AddComment(context.Background(), "acme", "user-2", ticket.ID, "Checked the tray, looks bent", true)
	require.NoError(t, err)
	assert.True(t, activity.IsInternalComment())

	stored, err := fixture.tickets.GetByID(context.Background(), nil, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.UpdatedAt, stored.UpdatedAt)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestGetAttachesSLASnapshot(t *testing.T) {
	fixture := newTicketFixture(t)
	ticket := fixture.createTicket(t)

	// 22 of the 24 budget hours consumed leaves ~8.3% remaining.
	fixture.clock.advance(22 * time.Hour)
	item, err := fixture.service.Get(context.Background(), "acme", ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, item.SLA)
	assert.Equal(t, "critical", string(item.SLA.Status))
	assert.Equal(t, int64(120), item.SLA.RemainingMinutes)

	// A type without a budget yields no snapshot.
	exempt := fixture.types.add("Question", nil)
	other, err := fixture.service.Create(context.Background(), "acme", "user-1", TicketCreateInput{
		TicketTypeID: exempt.ID,
		Title:        "How do I export reports?",
		Description:  "Looking for the export button.",
	})
	require.NoError(t, err)
	fetched, err := fixture.service.Get(context.Background(), "acme", other.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.SLA)
}
