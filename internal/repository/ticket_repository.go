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

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
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

// TicketRepository encapsulates ticket persistence. Every method operates on
// the handle it is given, so calls compose into a caller-owned transaction.
type TicketRepository interface {
	Create(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) error
	Update(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) error
	GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, q persistence.Querier, code string) (*domain.Ticket, error)
	List(ctx context.Context, q persistence.Querier, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, q persistence.Querier, filter TicketFilter) (int64, error)
	Delete(ctx context.Context, q persistence.Querier, id string) error
	CodeExists(ctx context.Context, q persistence.Querier, code string) (bool, error)
	HasInterventions(ctx context.Context, q persistence.Querier, id string) (bool, error)
}

type ticketRepository struct{}

// NewTicketRepository instantiates repository.
func NewTicketRepository() TicketRepository {
	return &ticketRepository{}
}

const ticketColumns = `id, ticket_number, unique_code, ticket_type_id, client_id, equipment_id,
               title, description, priority, status, requester_user_id, assigned_to_id, location,
               opened_at, expected_at, completed_at, rating, rating_comment, deleted_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_number, unique_code, ticket_type_id, client_id, equipment_id,
            title, description, priority, status, requester_user_id, assigned_to_id, location,
            opened_at, expected_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`
	return q.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.UniqueCode,
		ticket.TicketTypeID,
		ticket.ClientID,
		ticket.EquipmentID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterID,
		ticket.AssignedToID,
		ticket.Location,
		ticket.OpenedAt,
		ticket.ExpectedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, q persistence.Querier, ticket *domain.Ticket) error {
	// ticket_number, unique_code and opened_at are immutable and deliberately
	// absent from the update list.
	const query = `
        UPDATE tickets SET ticket_type_id=$1, client_id=$2, equipment_id=$3, title=$4, description=$5,
            priority=$6, status=$7, assigned_to_id=$8, location=$9, expected_at=$10, completed_at=$11,
            rating=$12, rating_comment=$13, updated_at=NOW()
        WHERE id=$14 AND deleted_at IS NULL`
	cmd, err := q.Exec(ctx, query,
		ticket.TicketTypeID,
		ticket.ClientID,
		ticket.EquipmentID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedToID,
		ticket.Location,
		ticket.ExpectedAt,
		ticket.CompletedAt,
		ticket.Rating,
		ticket.RatingComment,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND deleted_at IS NULL`
	return r.fetchSingle(ctx, q, query, id)
}

func (r *ticketRepository) GetByCode(ctx context.Context, q persistence.Querier, code string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE unique_code=$1 AND deleted_at IS NULL`
	return r.fetchSingle(ctx, q, query, strings.ToUpper(strings.TrimSpace(code)))
}

func (r *ticketRepository) fetchSingle(ctx context.Context, q persistence.Querier, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(q.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, q persistence.Querier, id string) error {
	cmd, err := q.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) CodeExists(ctx context.Context, q persistence.Querier, code string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE unique_code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *ticketRepository) HasInterventions(ctx context.Context, q persistence.Querier, id string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM interventions WHERE ticket_id=$1 AND deleted_at IS NULL)`,
		id).Scan(&exists)
	return exists, err
}

func (r *ticketRepository) List(ctx context.Context, q persistence.Querier, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := ticketFilterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY opened_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, q persistence.Querier, filter TicketFilter) (int64, error) {
	clauses, args := ticketFilterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	err := q.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func ticketFilterClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.TicketTypeID != nil {
		args = append(args, *filter.TicketTypeID)
		clauses = append(clauses, fmt.Sprintf("ticket_type_id=$%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if filter.EquipmentID != nil {
		args = append(args, *filter.EquipmentID)
		clauses = append(clauses, fmt.Sprintf("equipment_id=$%d", len(args)))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_user_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("opened_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(ticket_number) LIKE %s)",
			placeholder, placeholder, placeholder))
	}
	return clauses, args
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.UniqueCode,
		&ticket.TicketTypeID,
		&ticket.ClientID,
		&ticket.EquipmentID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterID,
		&ticket.AssignedToID,
		&ticket.Location,
		&ticket.OpenedAt,
		&ticket.ExpectedAt,
		&ticket.CompletedAt,
		&ticket.Rating,
		&ticket.RatingComment,
		&ticket.DeletedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
