package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/repository"
	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

type interventionFixture struct {
	*ticketFixture
	service       *InterventionService
	interventions *memInterventionRepo
}

func newInterventionFixture(t *testing.T) *interventionFixture {
	t.Helper()
	base := newTicketFixture(t)
	interventions := newMemInterventionRepo()
	store := fakeStore{}
	service := NewInterventionService(InterventionDependencies{
		Tenants:          store,
		InterventionRepo: interventions,
		TicketRepo:       base.tickets,
		Activity:         NewActivityService(store, base.activities),
		Now:              base.clock.now,
	})
	return &interventionFixture{ticketFixture: base, service: service, interventions: interventions}
}

func TestCreateInterventionLogsActivityAndCostLines(t *testing.T) {
	fixture := newInterventionFixture(t)
	ticket := fixture.createTicket(t)

	labor := 120.0
	parts := 45.5
	intervention, err := fixture.service.Create(context.Background(), "acme", "tech-1", InterventionCreateInput{
		TicketID:     ticket.ID,
		TechnicianID: "tech-1",
		Type:         domain.InterventionTypeRepair,
		Description:  "Replaced duplex roller assembly",
		LaborCost:    &labor,
		PartsCost:    &parts,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InterventionStatusPending, intervention.Status)
	assert.Equal(t, fixture.clock.current, intervention.StartTime)
	require.Len(t, intervention.Costs, 2)
	assert.Equal(t, domain.CostTypeLabor, intervention.Costs[0].CostType)
	assert.Equal(t, domain.CostTypePart, intervention.Costs[1].CostType)
	assert.InDelta(t, 165.5, intervention.TotalCost, 0.001)

	logged := fixture.activities.byType(ticket.ID, domain.ActivityInterventionAdded)
	require.Len(t, logged, 1)
	assert.Equal(t, intervention.ID, logged[0].Metadata["intervention_id"])

	total, err := fixture.service.TicketTotal(context.Background(), "acme", ticket.ID)
	require.NoError(t, err)
	assert.InDelta(t, 165.5, total, 0.001)
}

func TestCreateInterventionRequiresLiveTicket(t *testing.T) {
	fixture := newInterventionFixture(t)
	_, err := fixture.service.Create(context.Background(), "acme", "tech-1", InterventionCreateInput{
		TicketID:     "ticket-missing",
		TechnicianID: "tech-1",
		Type:         domain.InterventionTypeInspection,
		Description:  "Check the wiring",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestCreateInterventionValidation(t *testing.T) {
	fixture := newInterventionFixture(t)
	ticket := fixture.createTicket(t)

	start := fixture.clock.current
	end := start.Add(-time.Hour)
	_, err := fixture.service.Create(context.Background(), "acme", "tech-1", InterventionCreateInput{
		TicketID:     ticket.ID,
		TechnicianID: "tech-1",
		Type:         domain.InterventionTypeRepair,
		Description:  "time travel",
		StartTime:    start,
		EndTime:      &end,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	negative := -10.0
	_, err = fixture.service.Create(context.Background(), "acme", "tech-1", InterventionCreateInput{
		TicketID:     ticket.ID,
		TechnicianID: "tech-1",
		Type:         domain.InterventionTypeRepair,
		Description:  "free money",
		LaborCost:    &negative,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestAddCostToLiveInterventionOnly(t *testing.T) {
	fixture := newInterventionFixture(t)
	ticket := fixture.createTicket(t)

	intervention, err := fixture.service.Create(context.Background(), "acme", "tech-1", InterventionCreateInput{
		TicketID:     ticket.ID,
		TechnicianID: "tech-1",
		Type:         domain.InterventionTypeMaintenance,
		Description:  "Quarterly service",
	})
	require.NoError(t, err)

	cost, err := fixture.service.AddCost(context.Background(), "acme", intervention.ID, CostInput{
		Description: "Travel to site",
		CostType:    domain.CostTypeTravel,
		Quantity:    1,
		UnitPrice:   30,
		TotalPrice:  30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cost.ID)

	_, err = fixture.service.AddCost(context.Background(), "acme", intervention.ID, CostInput{
		Description: "bad line",
		CostType:    domain.CostTypeOther,
		TotalPrice:  -1,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	require.NoError(t, fixture.service.Delete(context.Background(), "acme", intervention.ID))
	_, err = fixture.service.AddCost(context.Background(), "acme", intervention.ID, CostInput{
		Description: "late line",
		CostType:    domain.CostTypeOther,
		TotalPrice:  5,
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestSoftDeletedInterventionLeavesTicketTotals(t *testing.T) {
	fixture := newInterventionFixture(t)
	ticket := fixture.createTicket(t)

	labor := 100.0
	first, err := fixture.service.Create(context.Background(), "acme", "tech-1", InterventionCreateInput{
		TicketID:     ticket.ID,
		TechnicianID: "tech-1",
		Type:         domain.InterventionTypeRepair,
		Description:  "First visit",
		LaborCost:    &labor,
	})
	require.NoError(t, err)

	second, err := fixture.service.Create(context.Background(), "acme", "tech-2", InterventionCreateInput{
		TicketID:     ticket.ID,
		TechnicianID: "tech-2",
		Type:         domain.InterventionTypeRepair,
		Description:  "Second visit",
		LaborCost:    &labor,
	})
	require.NoError(t, err)

	require.NoError(t, fixture.service.Delete(context.Background(), "acme", first.ID))

	total, err := fixture.service.TicketTotal(context.Background(), "acme", ticket.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, total, 0.001)

	listed, err := fixture.service.List(context.Background(), "acme", repository.InterventionFilter{TicketID: &ticket.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	_, err = fixture.service.Get(context.Background(), "acme", first.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
