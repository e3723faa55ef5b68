package organizations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgdesk/orgdesk/internal/shared"
)

// RepositoryPort defines data access methods for organizations.
type RepositoryPort interface {
	List(ctx context.Context, page, perPage int) ([]Organization, int, error)
	Get(ctx context.Context, id int64) (Organization, error)
	Create(ctx context.Context, org Organization) (Organization, error)
	Update(ctx context.Context, id int64, org Organization) (Organization, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence. Role cascade and the
// user reference reset are enforced by the schema (ON DELETE CASCADE on
// roles.organization_id, ON DELETE SET NULL on users.organization_id).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of organizations plus the total count.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]Organization, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at FROM organizations ORDER BY id LIMIT $1 OFFSET $2`, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var orgs []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt); err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

// Get fetches an organization by id.
func (r *Repository) Get(ctx context.Context, id int64) (Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at FROM organizations WHERE id = $1`, id).
		Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, shared.ErrNotFound
		}
		return Organization{}, err
	}
	return org, nil
}

// Create inserts a new organization.
func (r *Repository) Create(ctx context.Context, org Organization) (Organization, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO organizations (name, description) VALUES ($1, $2) RETURNING id, created_at`, org.Name, org.Description).
		Scan(&org.ID, &org.CreatedAt)
	if err != nil {
		return Organization{}, err
	}
	return org, nil
}

// Update modifies an existing organization.
func (r *Repository) Update(ctx context.Context, id int64, org Organization) (Organization, error) {
	err := r.pool.QueryRow(ctx, `UPDATE organizations SET name = $2, description = $3 WHERE id = $1 RETURNING id, name, description, created_at`, id, org.Name, org.Description).
		Scan(&org.ID, &org.Name, &org.Description, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, shared.ErrNotFound
		}
		return Organization{}, err
	}
	return org, nil
}

// Delete removes an organization. The schema cascades role deletion and
// clears user references.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
