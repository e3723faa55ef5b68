package users

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk/internal/grants"
	"github.com/orgdesk/orgdesk/internal/policy"
	"github.com/orgdesk/orgdesk/internal/shared"
	_ "github.com/orgdesk/orgdesk/testing"
)

type mockUserRepo struct {
	users      map[int64]User
	roles      map[int64]struct{}
	orgs       map[int64]struct{}
	nextID     int64
	deletedIDs []int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[int64]User),
		roles:  make(map[int64]struct{}),
		orgs:   make(map[int64]struct{}),
		nextID: 1,
	}
}

func (m *mockUserRepo) seed(user User) User {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user
}

func (m *mockUserRepo) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	var result []User
	for _, user := range m.users {
		result = append(result, user)
	}
	return result, len(result), nil
}

func (m *mockUserRepo) Get(ctx context.Context, id int64) (User, error) {
	user, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user User) (User, error) {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			vErr := shared.NewValidationError()
			vErr.Add("username", "a user with that username already exists")
			return User{}, vErr
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, user User) (User, error) {
	existing, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	user.ID = id
	user.IsSuperuser = existing.IsSuperuser
	m.users[id] = user
	return user, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockUserRepo) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	user, ok := m.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	user.RoleIDs = roleIDs
	m.users[userID] = user
	return nil
}

func (m *mockUserRepo) FilterRoleIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var resolved []int64
	for _, id := range ids {
		if _, ok := m.roles[id]; ok {
			resolved = append(resolved, id)
		}
	}
	return resolved, nil
}

func (m *mockUserRepo) OrganizationExists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.orgs[id]
	return ok, nil
}

type staticHasher struct{}

func (staticHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func newUserService(repo *mockUserRepo) *Service {
	return NewService(repo, policy.NewEngine(), staticHasher{}, nil, slog.Default())
}

func superuserActor() policy.Actor {
	return policy.NewActor(1, "root", true, true, nil, nil)
}

func adminActor(grantNames ...string) policy.Actor {
	return policy.NewActor(2, "admin", false, true, nil, grantNames)
}

func managerActor() policy.Actor {
	return policy.NewActor(3, "manager", false, false, []string{policy.RoleNameManager}, nil)
}

func TestCreateHashesPasswordAndDefaultsActive(t *testing.T) {
	repo := newMockUserRepo()
	svc := newUserService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, superuserActor(), UserForm{
		Username: "Alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed:s3cret-pass", user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
}

func TestCreateRequiresPassword(t *testing.T) {
	svc := newUserService(newMockUserRepo())

	_, err := svc.Create(context.Background(), superuserActor(), UserForm{
		Username: "alice",
		Email:    "alice@example.com",
	})

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "password")
}

func TestCreateRejectsUnknownRoleIDs(t *testing.T) {
	repo := newMockUserRepo()
	repo.roles[1] = struct{}{}
	svc := newUserService(repo)

	_, err := svc.Create(context.Background(), superuserActor(), UserForm{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		RoleIDs:  []int64{1, 99},
	})

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "roles")
}

func TestUpdateKeepsPasswordAndSuperuserFlag(t *testing.T) {
	repo := newMockUserRepo()
	seeded := repo.seed(User{Username: "root2", Email: "root2@example.com", PasswordHash: "hashed:original", IsSuperuser: true, IsActive: true})
	svc := newUserService(repo)

	updated, err := svc.Update(context.Background(), superuserActor(), seeded.ID, UserForm{
		Username: "root2",
		Email:    "root2@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "hashed:original", updated.PasswordHash)
	assert.True(t, updated.IsSuperuser)
}

func TestUpdateGrantGating(t *testing.T) {
	repo := newMockUserRepo()
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", IsActive: true})
	svc := newUserService(repo)
	form := UserForm{Username: "bob", Email: "bob@example.com"}
	ctx := context.Background()

	_, err := svc.Update(ctx, adminActor(), target.ID, form)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Update(ctx, adminActor(grants.ChangeUser), target.ID, form)
	assert.NoError(t, err)

	// The complementary grant does not carry over.
	err = svc.Delete(ctx, adminActor(grants.ChangeUser), target.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDeleteRequiresDeleteUserGrant(t *testing.T) {
	repo := newMockUserRepo()
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", IsActive: true})
	svc := newUserService(repo)
	ctx := context.Background()

	err := svc.Delete(ctx, managerActor(), target.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	err = svc.Delete(ctx, adminActor(grants.DeleteUser), target.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{target.ID}, repo.deletedIDs)
}

func TestNotFoundBeforeForbidden(t *testing.T) {
	svc := newUserService(newMockUserRepo())
	ctx := context.Background()

	// Even the superuser sees NotFound for a missing target, and an actor
	// who would be denied sees NotFound rather than Forbidden.
	_, err := svc.Get(ctx, superuserActor(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Update(ctx, managerActor(), 404, UserForm{Username: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(ctx, managerActor(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.AssignRoles(ctx, managerActor(), 404, nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssignRolesReplacesAndDropsUnknown(t *testing.T) {
	repo := newMockUserRepo()
	repo.roles[1] = struct{}{}
	repo.roles[2] = struct{}{}
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", RoleIDs: []int64{2}, IsActive: true})
	svc := newUserService(repo)
	ctx := context.Background()

	message, err := svc.AssignRoles(ctx, adminActor(grants.AssignRoles), target.ID, []int64{1, 42})
	require.NoError(t, err)
	assert.Equal(t, "Roles assigned successfully", message)
	assert.Equal(t, []int64{1}, repo.users[target.ID].RoleIDs)
}

func TestAssignRolesEmptyListClears(t *testing.T) {
	repo := newMockUserRepo()
	repo.roles[1] = struct{}{}
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", RoleIDs: []int64{1}, IsActive: true})
	svc := newUserService(repo)

	_, err := svc.AssignRoles(context.Background(), superuserActor(), target.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, repo.users[target.ID].RoleIDs)
}

func TestAssignRolesPolicy(t *testing.T) {
	repo := newMockUserRepo()
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", IsActive: true})
	svc := newUserService(repo)
	ctx := context.Background()

	_, err := svc.AssignRoles(ctx, adminActor(), target.ID, nil)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.AssignRoles(ctx, managerActor(), target.ID, nil)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.AssignRoles(ctx, superuserActor(), target.ID, nil)
	assert.NoError(t, err)
}

func TestSelfDeleteSkipsPolicy(t *testing.T) {
	repo := newMockUserRepo()
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", IsActive: true})
	svc := newUserService(repo)
	ctx := context.Background()

	// A zero-role actor with no flags or grants can still delete here.
	plain := policy.NewActor(9, "plain", false, false, nil, nil)
	require.NoError(t, svc.SelfDelete(ctx, plain, target.ID))

	err := svc.SelfDelete(ctx, plain, target.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAnonymousRejectedEverywhere(t *testing.T) {
	repo := newMockUserRepo()
	target := repo.seed(User{Username: "bob", Email: "bob@example.com", IsActive: true})
	svc := newUserService(repo)
	ctx := context.Background()
	anon := policy.Anonymous()

	_, _, err := svc.List(ctx, anon, 1, 20)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.Get(ctx, anon, target.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.Create(ctx, anon, UserForm{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	_, err = svc.AssignRoles(ctx, anon, target.ID, nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.ErrorIs(t, svc.SelfDelete(ctx, anon, target.ID), shared.ErrUnauthenticated)
}

func TestDuplicateUsernameSurfacesAsValidation(t *testing.T) {
	repo := newMockUserRepo()
	repo.seed(User{Username: "alice", Email: "alice@example.com", IsActive: true})
	svc := newUserService(repo)

	_, err := svc.Create(context.Background(), superuserActor(), UserForm{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cret-pass",
	})

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "username")
}
