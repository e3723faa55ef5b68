package organizations

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk/internal/shared"
)

// The organization lifecycle leans on the schema: deleting an organization
// must cascade its roles and detach (not delete) its users. The schema test
// pins the FK clauses; the live test proves the behavior against a real
// database when PG_DSN points at one.

func TestSchemaEnforcesOrganizationLifecycle(t *testing.T) {
	schema, err := os.ReadFile("../../scripts/schema.sql")
	require.NoError(t, err)

	assert.Contains(t, string(schema),
		"organization_id BIGINT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE",
		"roles must be removed with their organization")
	assert.Contains(t, string(schema),
		"organization_id BIGINT REFERENCES organizations(id) ON DELETE SET NULL",
		"users must survive their organization with a cleared reference")
}

func TestDeleteCascadesRolesAndDetachesUsers(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set; skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool)
	org, err := repo.Create(ctx, Organization{Name: fmt.Sprintf("lifecycle-%d", time.Now().UnixNano())})
	require.NoError(t, err)

	var roleID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO roles (name, organization_id) VALUES ('Member', $1) RETURNING id`, org.ID).Scan(&roleID))

	suffix := time.Now().UnixNano()
	var userID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, organization_id)
		 VALUES ($1, $2, 'x', $3) RETURNING id`,
		fmt.Sprintf("lifecycle-%d", suffix), fmt.Sprintf("lifecycle-%d@example.com", suffix), org.ID).Scan(&userID))
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})

	require.NoError(t, repo.Delete(ctx, org.ID))

	_, err = repo.Get(ctx, org.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles WHERE id = $1`, roleID).Scan(&count))
	assert.Zero(t, count, "role should be removed with its organization")

	var orgRef *int64
	err = pool.QueryRow(ctx, `SELECT organization_id FROM users WHERE id = $1`, userID).Scan(&orgRef)
	require.NoError(t, err, "user should survive the organization")
	assert.Nil(t, orgRef, "user organization reference should be cleared")
}
