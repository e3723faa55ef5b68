package roles

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/orgdesk/orgdesk/internal/policy"
	"github.com/orgdesk/orgdesk/internal/shared"
)

// Service orchestrates role CRUD. Every action requires the admin tier.
type Service struct {
	repo   RepositoryPort
	policy *policy.Engine
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, engine *policy.Engine, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: engine, audit: audit, logger: logger}
}

// List returns one page of roles.
func (s *Service) List(ctx context.Context, actor policy.Actor, page, perPage int) ([]Role, shared.Pagination, error) {
	if actor.IsAnonymous() {
		return nil, shared.Pagination{}, shared.ErrUnauthenticated
	}
	if !s.policy.RoleList(actor).Allowed() {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	result, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single role, existence checked before policy.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (Role, error) {
	if actor.IsAnonymous() {
		return Role{}, shared.ErrUnauthenticated
	}
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if !s.policy.RoleRetrieve(actor).Allowed() {
		return Role{}, shared.ErrForbidden
	}
	return role, nil
}

// Create inserts a new role under an existing organization.
func (s *Service) Create(ctx context.Context, actor policy.Actor, form RoleForm) (Role, error) {
	if actor.IsAnonymous() {
		return Role{}, shared.ErrUnauthenticated
	}
	if !s.policy.RoleCreate(actor).Allowed() {
		return Role{}, shared.ErrForbidden
	}
	if err := form.validateForm(ctx, s.repo); err != nil {
		return Role{}, err
	}
	role, err := s.repo.Create(ctx, Role{Name: form.Name, Description: form.Description, OrganizationID: form.OrganizationID})
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, actor, "role.create", role.ID)
	return role, nil
}

// Update modifies an existing role.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, form RoleForm) (Role, error) {
	if actor.IsAnonymous() {
		return Role{}, shared.ErrUnauthenticated
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Role{}, err
	}
	if !s.policy.RoleUpdate(actor).Allowed() {
		return Role{}, shared.ErrForbidden
	}
	if err := form.validateForm(ctx, s.repo); err != nil {
		return Role{}, err
	}
	role, err := s.repo.Update(ctx, id, Role{Name: form.Name, Description: form.Description, OrganizationID: form.OrganizationID})
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, actor, "role.update", role.ID)
	return role, nil
}

// Delete removes a role.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if actor.IsAnonymous() {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if !s.policy.RoleDelete(actor).Allowed() {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "role.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor policy.Actor, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	event := shared.AuditEvent{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "role",
		EntityID: strconv.FormatInt(entityID, 10),
		At:       time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("record audit event", slog.String("action", action), slog.Any("error", err))
	}
}
