package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgdesk/orgdesk/internal/shared"
)

// RepositoryPort defines the account lookups the auth flow needs.
type RepositoryPort interface {
	FindByIdentifier(ctx context.Context, identifier string) (Account, error)
	FindByID(ctx context.Context, id int64) (Account, error)
	RoleNames(ctx context.Context, userID int64) ([]string, error)
}

// Repository provides PostgreSQL backed account lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, username, password_hash, is_superuser, is_staff, is_active`

func scanAccount(row pgx.Row) (Account, error) {
	var account Account
	err := row.Scan(&account.ID, &account.Username, &account.PasswordHash,
		&account.IsSuperuser, &account.IsStaff, &account.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.ErrNotFound
	}
	return account, err
}

// FindByIdentifier looks an account up by username or email.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE username = $1 OR email = $1`, identifier))
}

// FindByID looks an account up by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = $1`, id))
}

// RoleNames returns the names of every role the user holds.
func (r *Repository) RoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.name FROM roles r JOIN user_roles ur ON ur.role_id = r.id WHERE ur.user_id = $1`, userID)
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
	return names, rows.Err()
}

var _ RepositoryPort = (*Repository)(nil)
