package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

func newTypeService() (*TicketTypeService, *memTypeRepo) {
	types := newMemTypeRepo()
	return NewTicketTypeService(fakeStore{}, types), types
}

func TestTicketTypeValidation(t *testing.T) {
	service, _ := newTypeService()

	_, err := service.Create(context.Background(), "acme", TicketTypeInput{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	zero := int32(0)
	_, err = service.Create(context.Background(), "acme", TicketTypeInput{Name: "Network", SLAHours: &zero})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	hours := int32(48)
	created, err := service.Create(context.Background(), "acme", TicketTypeInput{
		Name:     "  Network  ",
		SLAHours: &hours,
	})
	require.NoError(t, err)
	assert.Equal(t, "Network", created.Name)
	require.NotNil(t, created.SLAHours)
	assert.Equal(t, int32(48), *created.SLAHours)
}

func TestTicketTypeUpdateCanClearSLABudget(t *testing.T) {
	service, _ := newTypeService()

	hours := int32(24)
	created, err := service.Create(context.Background(), "acme", TicketTypeInput{Name: "Hardware", SLAHours: &hours})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), "acme", created.ID, TicketTypeInput{Name: "Hardware"})
	require.NoError(t, err)
	assert.Nil(t, updated.SLAHours)

	_, err = service.Update(context.Background(), "acme", "type-missing", TicketTypeInput{Name: "Hardware"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestTicketTypeDeleteBlockedWhileReferenced(t *testing.T) {
	service, types := newTypeService()

	created, err := service.Create(context.Background(), "acme", TicketTypeInput{Name: "Software"})
	require.NoError(t, err)

	types.activeTickets[created.ID] = true
	err = service.Delete(context.Background(), "acme", created.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	types.activeTickets[created.ID] = false
	require.NoError(t, service.Delete(context.Background(), "acme", created.ID))

	_, err = service.Get(context.Background(), "acme", created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	listed, err := service.List(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
