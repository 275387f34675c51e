package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// InterventionFilter captures intervention search parameters. EquipmentID
// filters through the parent ticket.
type InterventionFilter struct {
	TicketID     *string
	TechnicianID *string
	EquipmentID  *string
	Type         *domain.InterventionType
	Status       *domain.InterventionStatus
	StartedFrom  *time.Time
	StartedTo    *time.Time
	Limit        int
	Offset       int
}

// InterventionTypeStat aggregates interventions by type.
type InterventionTypeStat struct {
	Type      domain.InterventionType
	Count     int64
	TotalCost float64
}

// TechnicianStat aggregates interventions by technician.
type TechnicianStat struct {
	TechnicianID string
	Name         string
	Count        int64
	TotalCost    float64
}

// InterventionRepository persists technician work sessions and their cost
// sub-ledger.
type InterventionRepository interface {
	Create(ctx context.Context, q persistence.Querier, intervention *domain.Intervention) error
	Update(ctx context.Context, q persistence.Querier, intervention *domain.Intervention) error
	GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.Intervention, error)
	List(ctx context.Context, q persistence.Querier, filter InterventionFilter) ([]domain.Intervention, error)
	Count(ctx context.Context, q persistence.Querier, filter InterventionFilter) (int64, error)
	SoftDelete(ctx context.Context, q persistence.Querier, id string) error
	AddCost(ctx context.Context, q persistence.Querier, cost *domain.InterventionCost) error
	ListCosts(ctx context.Context, q persistence.Querier, interventionIDs []string) (map[string][]domain.InterventionCost, error)
	TicketTotalCost(ctx context.Context, q persistence.Querier, ticketID string) (float64, error)
	StatsByType(ctx context.Context, q persistence.Querier) ([]InterventionTypeStat, error)
	StatsByTechnician(ctx context.Context, q persistence.Querier) ([]TechnicianStat, error)
	AverageDurationMinutes(ctx context.Context, q persistence.Querier) (*float64, error)
}

type interventionRepository struct{}

// NewInterventionRepository builds repository.
func NewInterventionRepository() InterventionRepository {
	return &interventionRepository{}
}

const interventionColumns = `id, ticket_id, technician_id, intervention_type, description,
               start_time, end_time, duration_minutes, status, notes, deleted_at, created_at, updated_at`

func (r *interventionRepository) Create(ctx context.Context, q persistence.Querier, intervention *domain.Intervention) error {
	const query = `
        INSERT INTO interventions (ticket_id, technician_id, intervention_type, description,
            start_time, end_time, duration_minutes, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return q.QueryRow(ctx, query,
		intervention.TicketID,
		intervention.TechnicianID,
		intervention.Type,
		intervention.Description,
		intervention.StartTime,
		intervention.EndTime,
		intervention.DurationMinutes,
		intervention.Status,
		intervention.Notes,
	).Scan(&intervention.ID, &intervention.CreatedAt, &intervention.UpdatedAt)
}

func (r *interventionRepository) Update(ctx context.Context, q persistence.Querier, intervention *domain.Intervention) error {
	const query = `
        UPDATE interventions SET intervention_type=$1, description=$2, start_time=$3, end_time=$4,
            duration_minutes=$5, status=$6, notes=$7, updated_at=NOW()
        WHERE id=$8 AND deleted_at IS NULL`
	cmd, err := q.Exec(ctx, query,
		intervention.Type,
		intervention.Description,
		intervention.StartTime,
		intervention.EndTime,
		intervention.DurationMinutes,
		intervention.Status,
		intervention.Notes,
		intervention.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *interventionRepository) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.Intervention, error) {
	query := `SELECT ` + interventionColumns + ` FROM interventions WHERE id=$1 AND deleted_at IS NULL`
	var intervention domain.Intervention
	if err := scanIntervention(q.QueryRow(ctx, query, id), &intervention); err != nil {
		return nil, err
	}
	return &intervention, nil
}

func (r *interventionRepository) SoftDelete(ctx context.Context, q persistence.Querier, id string) error {
	cmd, err := q.Exec(ctx,
		`UPDATE interventions SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *interventionRepository) List(ctx context.Context, q persistence.Querier, filter InterventionFilter) ([]domain.Intervention, error) {
	clauses, args := interventionFilterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT i.id, i.ticket_id, i.technician_id, i.intervention_type, i.description,
               i.start_time, i.end_time, i.duration_minutes, i.status, i.notes, i.deleted_at, i.created_at, i.updated_at
        FROM interventions i
        JOIN tickets t ON t.id = i.ticket_id
        WHERE %s ORDER BY i.start_time DESC, i.id DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Intervention
	for rows.Next() {
		var intervention domain.Intervention
		if err := scanIntervention(rows, &intervention); err != nil {
			return nil, err
		}
		result = append(result, intervention)
	}
	return result, rows.Err()
}

func (r *interventionRepository) Count(ctx context.Context, q persistence.Querier, filter InterventionFilter) (int64, error) {
	clauses, args := interventionFilterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM interventions i JOIN tickets t ON t.id = i.ticket_id WHERE %s`,
		strings.Join(clauses, " AND "))

	var total int64
	err := q.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func interventionFilterClauses(filter InterventionFilter) ([]string, []any) {
	clauses := []string{"i.deleted_at IS NULL"}
	args := []any{}

	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("i.ticket_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("i.technician_id=$%d", len(args)))
	}
	if filter.EquipmentID != nil {
		args = append(args, *filter.EquipmentID)
		clauses = append(clauses, fmt.Sprintf("t.equipment_id=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("i.intervention_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("i.status=$%d", len(args)))
	}
	if filter.StartedFrom != nil {
		args = append(args, *filter.StartedFrom)
		clauses = append(clauses, fmt.Sprintf("i.start_time >= $%d", len(args)))
	}
	if filter.StartedTo != nil {
		args = append(args, *filter.StartedTo)
		clauses = append(clauses, fmt.Sprintf("i.start_time <= $%d", len(args)))
	}
	return clauses, args
}

func (r *interventionRepository) AddCost(ctx context.Context, q persistence.Querier, cost *domain.InterventionCost) error {
	const query = `
        INSERT INTO intervention_costs (intervention_id, description, cost_type, quantity, unit_price, total_price)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		cost.InterventionID,
		cost.Description,
		cost.CostType,
		cost.Quantity,
		cost.UnitPrice,
		cost.TotalPrice,
	).Scan(&cost.ID, &cost.CreatedAt)
}

// ListCosts fetches cost lines for a batch of interventions in one query, so
// a row's costs arrive as one unit.
func (r *interventionRepository) ListCosts(ctx context.Context, q persistence.Querier, interventionIDs []string) (map[string][]domain.InterventionCost, error) {
	result := make(map[string][]domain.InterventionCost, len(interventionIDs))
	if len(interventionIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT id, intervention_id, description, cost_type, quantity, unit_price, total_price, created_at
        FROM intervention_costs
        WHERE intervention_id = ANY($1)
        ORDER BY created_at ASC, id ASC`
	rows, err := q.Query(ctx, query, interventionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cost domain.InterventionCost
		if err := rows.Scan(
			&cost.ID,
			&cost.InterventionID,
			&cost.Description,
			&cost.CostType,
			&cost.Quantity,
			&cost.UnitPrice,
			&cost.TotalPrice,
			&cost.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[cost.InterventionID] = append(result[cost.InterventionID], cost)
	}
	return result, rows.Err()
}

func (r *interventionRepository) TicketTotalCost(ctx context.Context, q persistence.Querier, ticketID string) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(c.total_price), 0)
        FROM intervention_costs c
        JOIN interventions i ON i.id = c.intervention_id
        WHERE i.ticket_id=$1 AND i.deleted_at IS NULL`
	var total float64
	err := q.QueryRow(ctx, query, ticketID).Scan(&total)
	return total, err
}

func (r *interventionRepository) StatsByType(ctx context.Context, q persistence.Querier) ([]InterventionTypeStat, error) {
	const query = `
        SELECT i.intervention_type, COUNT(DISTINCT i.id), COALESCE(SUM(c.total_price), 0)
        FROM interventions i
        LEFT JOIN intervention_costs c ON c.intervention_id = i.id
        WHERE i.deleted_at IS NULL
        GROUP BY i.intervention_type`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []InterventionTypeStat
	for rows.Next() {
		var row InterventionTypeStat
		if err := rows.Scan(&row.Type, &row.Count, &row.TotalCost); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *interventionRepository) StatsByTechnician(ctx context.Context, q persistence.Querier) ([]TechnicianStat, error) {
	const query = `
        SELECT i.technician_id, COALESCE(u.name, ''), COUNT(DISTINCT i.id), COALESCE(SUM(c.total_price), 0)
        FROM interventions i
        LEFT JOIN users u ON u.id = i.technician_id
        LEFT JOIN intervention_costs c ON c.intervention_id = i.id
        WHERE i.deleted_at IS NULL
        GROUP BY i.technician_id, u.name
        ORDER BY COUNT(DISTINCT i.id) DESC`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TechnicianStat
	for rows.Next() {
		var row TechnicianStat
		if err := rows.Scan(&row.TechnicianID, &row.Name, &row.Count, &row.TotalCost); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *interventionRepository) AverageDurationMinutes(ctx context.Context, q persistence.Querier) (*float64, error) {
	const query = `
        SELECT AVG(duration_minutes)::float8 FROM interventions
        WHERE deleted_at IS NULL AND duration_minutes IS NOT NULL`
	var avg *float64
	if err := q.QueryRow(ctx, query).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func scanIntervention(row pgx.Row, intervention *domain.Intervention) error {
	return row.Scan(
		&intervention.ID,
		&intervention.TicketID,
		&intervention.TechnicianID,
		&intervention.Type,
		&intervention.Description,
		&intervention.StartTime,
		&intervention.EndTime,
		&intervention.DurationMinutes,
		&intervention.Status,
		&intervention.Notes,
		&intervention.DeletedAt,
		&intervention.CreatedAt,
		&intervention.UpdatedAt,
	)
}
