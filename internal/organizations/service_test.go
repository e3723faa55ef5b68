package organizations

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk/internal/policy"
	"github.com/orgdesk/orgdesk/internal/shared"
)

type mockOrgRepo struct {
	orgs   map[int64]Organization
	nextID int64
}

func newMockOrgRepo() *mockOrgRepo {
	return &mockOrgRepo{orgs: make(map[int64]Organization), nextID: 1}
}

func (m *mockOrgRepo) seed(org Organization) Organization {
	org.ID = m.nextID
	m.nextID++
	m.orgs[org.ID] = org
	return org
}

func (m *mockOrgRepo) List(ctx context.Context, page, perPage int) ([]Organization, int, error) {
	var result []Organization
	for _, org := range m.orgs {
		result = append(result, org)
	}
	return result, len(result), nil
}

func (m *mockOrgRepo) Get(ctx context.Context, id int64) (Organization, error) {
	org, ok := m.orgs[id]
	if !ok {
		return Organization{}, shared.ErrNotFound
	}
	return org, nil
}

func (m *mockOrgRepo) Create(ctx context.Context, org Organization) (Organization, error) {
	org.ID = m.nextID
	m.nextID++
	m.orgs[org.ID] = org
	return org, nil
}

func (m *mockOrgRepo) Update(ctx context.Context, id int64, org Organization) (Organization, error) {
	if _, ok := m.orgs[id]; !ok {
		return Organization{}, shared.ErrNotFound
	}
	org.ID = id
	m.orgs[id] = org
	return org, nil
}

func (m *mockOrgRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.orgs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.orgs, id)
	return nil
}

func newOrgService(repo *mockOrgRepo) *Service {
	return NewService(repo, policy.NewEngine(), nil, slog.Default())
}

func superuserActor() policy.Actor {
	return policy.NewActor(1, "root", true, true, nil, nil)
}

func adminActor() policy.Actor {
	return policy.NewActor(2, "admin", false, true, nil, nil)
}

func managerActor() policy.Actor {
	return policy.NewActor(3, "manager", false, false, []string{policy.RoleNameManager}, nil)
}

func memberActor() policy.Actor {
	return policy.NewActor(4, "member", false, false, []string{policy.RoleNameMember}, nil)
}

func plainActor() policy.Actor {
	return policy.NewActor(5, "plain", false, false, nil, nil)
}

func TestCreateByTier(t *testing.T) {
	tests := []struct {
		name    string
		actor   policy.Actor
		allowed bool
	}{
		{"superuser", superuserActor(), true},
		{"admin", adminActor(), true},
		{"manager role", managerActor(), true},
		{"member role", memberActor(), true},
		{"no roles", plainActor(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newOrgService(newMockOrgRepo())
			_, err := svc.Create(context.Background(), tt.actor, OrganizationForm{Name: "Acme"})
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrForbidden)
			}
		})
	}
}

func TestCreateValidatesName(t *testing.T) {
	svc := newOrgService(newMockOrgRepo())

	_, err := svc.Create(context.Background(), superuserActor(), OrganizationForm{Name: "  "})

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
}

func TestUpdateDeleteAdminOnly(t *testing.T) {
	repo := newMockOrgRepo()
	org := repo.seed(Organization{Name: "Acme"})
	svc := newOrgService(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, memberActor(), org.ID, OrganizationForm{Name: "Acme 2"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Update(ctx, managerActor(), org.ID, OrganizationForm{Name: "Acme 2"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.Update(ctx, adminActor(), org.ID, OrganizationForm{Name: "Acme 2"})
	require.NoError(t, err)
	assert.Equal(t, "Acme 2", updated.Name)

	assert.ErrorIs(t, svc.Delete(ctx, memberActor(), org.ID), shared.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminActor(), org.ID))
}

func TestRetrieveByMemberRole(t *testing.T) {
	repo := newMockOrgRepo()
	org := repo.seed(Organization{Name: "Acme"})
	svc := newOrgService(repo)

	got, err := svc.Get(context.Background(), memberActor(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)

	_, err = svc.Get(context.Background(), plainActor(), org.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestMissingOrgReadsNotFoundForEveryone(t *testing.T) {
	svc := newOrgService(newMockOrgRepo())
	ctx := context.Background()

	_, err := svc.Get(ctx, superuserActor(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// A plain actor would be forbidden, but the missing id wins.
	_, err = svc.Get(ctx, plainActor(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Update(ctx, plainActor(), 404, OrganizationForm{Name: "x"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, plainActor(), 404), shared.ErrNotFound)
}

func TestAnonymousUnauthenticated(t *testing.T) {
	repo := newMockOrgRepo()
	org := repo.seed(Organization{Name: "Acme"})
	svc := newOrgService(repo)
	ctx := context.Background()
	anon := policy.Anonymous()

	_, _, err := svc.List(ctx, anon, 1, 20)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.Get(ctx, anon, org.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.Create(ctx, anon, OrganizationForm{Name: "x"})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.ErrorIs(t, svc.Delete(ctx, anon, org.ID), shared.ErrUnauthenticated)
}
