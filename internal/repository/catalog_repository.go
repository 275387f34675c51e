package repository

import (
	"context"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// CatalogRepository reads the client and equipment entity catalogs referenced
// by tickets. Both are owned elsewhere; the ticket core only joins on them.
type CatalogRepository interface {
	GetClient(ctx context.Context, q persistence.Querier, id string) (*domain.Client, error)
	GetEquipment(ctx context.Context, q persistence.Querier, id string) (*domain.Equipment, error)
}

type catalogRepository struct{}

// NewCatalogRepository returns a Postgres-backed implementation.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepository{}
}

func (r *catalogRepository) GetClient(ctx context.Context, q persistence.Querier, id string) (*domain.Client, error) {
	var client domain.Client
	if err := q.QueryRow(ctx,
		`SELECT id, name, email, phone FROM clients WHERE id=$1`, id).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *catalogRepository) GetEquipment(ctx context.Context, q persistence.Querier, id string) (*domain.Equipment, error) {
	var equipment domain.Equipment
	if err := q.QueryRow(ctx,
		`SELECT id, name, serial_number FROM equipment WHERE id=$1`, id).Scan(
		&equipment.ID,
		&equipment.Name,
		&equipment.SerialNumber,
	); err != nil {
		return nil, err
	}
	return &equipment, nil
}
