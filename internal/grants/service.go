// Package grants stores fine-grained permission grants. Grants sit below
// the role/flag system: the policy engine consults them for user mutation
// and role assignment, where the admin flag alone is not sufficient.
package grants

import (
	"context"
	"fmt"
)

// Service orchestrates grant operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// HasGrant reports whether the user holds the named grant.
func (s *Service) HasGrant(ctx context.Context, userID int64, name string) (bool, error) {
	if !Known(name) {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, name)
}

// ListForUser returns all grant names held by the user. Resolved fresh per
// call; results must not be cached across requests.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Grant attaches a recognised grant to a user.
func (s *Service) Grant(ctx context.Context, userID int64, name string) error {
	if !Known(name) {
		return fmt.Errorf("grants: unknown grant %q", name)
	}
	return s.repo.Insert(ctx, userID, name)
}

// Revoke removes a grant from a user.
func (s *Service) Revoke(ctx context.Context, userID int64, name string) error {
	if !Known(name) {
		return fmt.Errorf("grants: unknown grant %q", name)
	}
	return s.repo.Delete(ctx, userID, name)
}
