package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgdesk/orgdesk/internal/platform/db"
	"github.com/orgdesk/orgdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, page, perPage int) ([]User, int, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id int64, user User) (User, error)
	Delete(ctx context.Context, id int64) error
	ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error
	FilterRoleIDs(ctx context.Context, ids []int64) ([]int64, error)
	OrganizationExists(ctx context.Context, id int64) (bool, error)
}

// Repository provides PostgreSQL backed persistence. User/role membership
// lives in user_roles; creating or updating a user replaces the membership
// rows inside one transaction so each call is a single atomic write.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, email, password_hash, organization_id, is_superuser, is_staff, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.OrganizationID,
		&user.IsSuperuser, &user.IsStaff, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// List returns one page of users with their role ids.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range result {
		roleIDs, err := r.roleIDs(ctx, result[i].ID)
		if err != nil {
			return nil, 0, err
		}
		result[i].RoleIDs = roleIDs
	}
	return result, total, nil
}

// Get fetches a user by id, including role ids.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	user.RoleIDs, err = r.roleIDs(ctx, user.ID)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Create inserts a new user and attaches the given roles.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, organization_id, is_superuser, is_staff, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
			user.Username, user.Email, user.PasswordHash, user.OrganizationID, user.IsSuperuser, user.IsStaff, user.IsActive).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}
		return insertRoles(ctx, tx, user.ID, user.RoleIDs)
	})
	if err != nil {
		return User{}, translateUnique(err)
	}
	return user, nil
}

// Update modifies an existing user and replaces its role set.
func (r *Repository) Update(ctx context.Context, id int64, user User) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE users SET username = $2, email = $3, password_hash = $4, organization_id = $5, is_staff = $6, is_active = $7, updated_at = NOW()
			 WHERE id = $1 RETURNING id, is_superuser, created_at, updated_at`,
			id, user.Username, user.Email, user.PasswordHash, user.OrganizationID, user.IsStaff, user.IsActive).
			Scan(&user.ID, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		return insertRoles(ctx, tx, id, user.RoleIDs)
	})
	if err != nil {
		return User{}, translateUnique(err)
	}
	return user, nil
}

// Delete removes a user; membership rows cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceRoles swaps the user's entire role set for the given ids.
func (r *Repository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		return insertRoles(ctx, tx, userID, roleIDs)
	})
}

// FilterRoleIDs returns the subset of ids that resolve to existing roles,
// preserving input order.
func (r *Repository) FilterRoleIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM roles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var resolved []int64
	for _, id := range ids {
		if _, ok := found[id]; ok {
			resolved = append(resolved, id)
		}
	}
	return resolved, nil
}

// OrganizationExists reports whether the organization id resolves.
func (r *Repository) OrganizationExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *Repository) roleIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1 ORDER BY role_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertRoles(ctx context.Context, tx pgx.Tx, userID int64, roleIDs []int64) error {
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID); err != nil {
			return err
		}
	}
	return nil
}

// translateUnique maps postgres unique violations on username/email to
// field-level validation errors, so races lost at the constraint read the
// same as payload validation failures.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	vErr := shared.NewValidationError()
	switch pgErr.ConstraintName {
	case "users_username_key":
		vErr.Add("username", "a user with that username already exists")
	case "users_email_key":
		vErr.Add("email", "a user with that email already exists")
	default:
		return shared.ErrConflict
	}
	return vErr
}

var _ RepositoryPort = (*Repository)(nil)
