package repository

import (
	"context"

	"github.com/atlasdesk/support-service/internal/domain"
	"github.com/atlasdesk/support-service/internal/persistence"
)

// UserRepository reads the user entity catalog. The catalog is owned by the
// identity module of the back office; the ticket core never writes it.
type UserRepository interface {
	GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, q persistence.Querier, email string) (*domain.User, error)
}

type userRepository struct{}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository() UserRepository {
	return &userRepository{}
}

const userColumns = `id, name, email, status, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, q persistence.Querier, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, q, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, q persistence.Querier, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, q, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, q persistence.Querier, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := q.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
