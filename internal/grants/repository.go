package grants

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for permission grants.
type RepositoryPort interface {
	ListForUser(ctx context.Context, userID int64) ([]string, error)
	Exists(ctx context.Context, userID int64, name string) (bool, error)
	Insert(ctx context.Context, userID int64, name string) error
	Delete(ctx context.Context, userID int64, name string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListForUser returns all grant names held by the user.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM user_grants WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Exists reports whether the user holds the named grant.
func (r *Repository) Exists(ctx context.Context, userID int64, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM user_grants WHERE user_id = $1 AND name = $2)`, userID, name).Scan(&exists)
	return exists, err
}

// Insert attaches a grant to a user. Inserting an existing grant is a no-op.
func (r *Repository) Insert(ctx context.Context, userID int64, name string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_grants (user_id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, name)
	return err
}

// Delete removes a grant from a user.
func (r *Repository) Delete(ctx context.Context, userID int64, name string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_grants WHERE user_id = $1 AND name = $2`, userID, name)
	return err
}

var _ RepositoryPort = (*Repository)(nil)
