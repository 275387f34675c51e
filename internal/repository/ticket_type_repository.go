package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// TicketTypeRepository manages administrator-defined ticket categories.
type TicketTypeRepository interface {
	Create(ctx context.Context, q persistence.Querier, ticketType *domain.TicketType) error
	Update(ctx context.Context, q persistence.Querier, ticketType *domain.TicketType) error
	GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.TicketType, error)
	List(ctx context.Context, q persistence.Querier) ([]domain.TicketType, error)
	SoftDelete(ctx context.Context, q persistence.Querier, id string) error
	HasActiveTickets(ctx context.Context, q persistence.Querier, id string) (bool, error)
}

type ticketTypeRepository struct{}

// NewTicketTypeRepository builds repository.
func NewTicketTypeRepository() TicketTypeRepository {
	return &ticketTypeRepository{}
}

const ticketTypeColumns = `id, name, description, sla_hours, icon, color, deleted_at, created_at, updated_at`

func (r *ticketTypeRepository) Create(ctx context.Context, q persistence.Querier, ticketType *domain.TicketType) error {
	const query = `
        INSERT INTO ticket_types (name, description, sla_hours, icon, color)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return q.QueryRow(ctx, query,
		ticketType.Name,
		ticketType.Description,
		ticketType.SLAHours,
		ticketType.Icon,
		ticketType.Color,
	).Scan(&ticketType.ID, &ticketType.CreatedAt, &ticketType.UpdatedAt)
}

func (r *ticketTypeRepository) Update(ctx context.Context, q persistence.Querier, ticketType *domain.TicketType) error {
	const query = `
        UPDATE ticket_types SET name=$1, description=$2, sla_hours=$3, icon=$4, color=$5, updated_at=NOW()
        WHERE id=$6 AND deleted_at IS NULL`
	cmd, err := q.Exec(ctx, query,
		ticketType.Name,
		ticketType.Description,
		ticketType.SLAHours,
		ticketType.Icon,
		ticketType.Color,
		ticketType.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id=$1 AND deleted_at IS NULL`
	var ticketType domain.TicketType
	if err := q.QueryRow(ctx, query, id).Scan(
		&ticketType.ID,
		&ticketType.Name,
		&ticketType.Description,
		&ticketType.SLAHours,
		&ticketType.Icon,
		&ticketType.Color,
		&ticketType.DeletedAt,
		&ticketType.CreatedAt,
		&ticketType.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticketType, nil
}

func (r *ticketTypeRepository) List(ctx context.Context, q persistence.Querier) ([]domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE deleted_at IS NULL ORDER BY name ASC`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var ticketType domain.TicketType
		if err := rows.Scan(
			&ticketType.ID,
			&ticketType.Name,
			&ticketType.Description,
			&ticketType.SLAHours,
			&ticketType.Icon,
			&ticketType.Color,
			&ticketType.DeletedAt,
			&ticketType.CreatedAt,
			&ticketType.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticketType)
	}
	return result, rows.Err()
}

func (r *ticketTypeRepository) SoftDelete(ctx context.Context, q persistence.Querier, id string) error {
	cmd, err := q.Exec(ctx,
		`UPDATE ticket_types SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketTypeRepository) HasActiveTickets(ctx context.Context, q persistence.Querier, id string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_type_id=$1 AND deleted_at IS NULL)`,
		id).Scan(&exists)
	return exists, err
}
