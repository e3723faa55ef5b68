package grants

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGrantRepo struct {
	grants map[int64]map[string]struct{}
}

func newMockGrantRepo() *mockGrantRepo {
	return &mockGrantRepo{grants: make(map[int64]map[string]struct{})}
}

func (m *mockGrantRepo) ListForUser(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	for name := range m.grants[userID] {
		names = append(names, name)
	}
	return names, nil
}

func (m *mockGrantRepo) Exists(ctx context.Context, userID int64, name string) (bool, error) {
	_, ok := m.grants[userID][name]
	return ok, nil
}

func (m *mockGrantRepo) Insert(ctx context.Context, userID int64, name string) error {
	if m.grants[userID] == nil {
		m.grants[userID] = make(map[string]struct{})
	}
	m.grants[userID][name] = struct{}{}
	return nil
}

func (m *mockGrantRepo) Delete(ctx context.Context, userID int64, name string) error {
	delete(m.grants[userID], name)
	return nil
}

func TestGrantAndRevoke(t *testing.T) {
	svc := NewService(newMockGrantRepo())
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, 7, ChangeUser))
	has, err := svc.HasGrant(ctx, 7, ChangeUser)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, svc.Revoke(ctx, 7, ChangeUser))
	has, err = svc.HasGrant(ctx, 7, ChangeUser)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestUnknownGrantRejected(t *testing.T) {
	svc := NewService(newMockGrantRepo())
	ctx := context.Background()

	assert.Error(t, svc.Grant(ctx, 7, "edit_everything"))
	assert.Error(t, svc.Revoke(ctx, 7, ""))

	has, err := svc.HasGrant(ctx, 7, "edit_everything")
	require.NoError(t, err)
	assert.False(t, has)
}
