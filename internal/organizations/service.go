package organizations

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/orgdesk/orgdesk/internal/policy"
	"github.com/orgdesk/orgdesk/internal/shared"
)

// Service orchestrates organization CRUD: authentication, policy check,
// payload validation, then a single persistence call.
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

// List returns one page of organizations.
func (s *Service) List(ctx context.Context, actor policy.Actor, page, perPage int) ([]Organization, shared.Pagination, error) {
	if actor.IsAnonymous() {
		return nil, shared.Pagination{}, shared.ErrUnauthenticated
	}
	if !s.policy.OrganizationList(actor).Allowed() {
		return nil, shared.Pagination{}, shared.ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	orgs, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return orgs, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single organization. Existence is checked before the policy
// so a missing id reads as NotFound for every actor.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (Organization, error) {
	if actor.IsAnonymous() {
		return Organization{}, shared.ErrUnauthenticated
	}
	org, err := s.repo.Get(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	if !s.policy.OrganizationRetrieve(actor).Allowed() {
		return Organization{}, shared.ErrForbidden
	}
	return org, nil
}

// Create inserts a new organization.
func (s *Service) Create(ctx context.Context, actor policy.Actor, form OrganizationForm) (Organization, error) {
	if actor.IsAnonymous() {
		return Organization{}, shared.ErrUnauthenticated
	}
	if !s.policy.OrganizationCreate(actor).Allowed() {
		return Organization{}, shared.ErrForbidden
	}
	if err := form.validateForm(); err != nil {
		return Organization{}, err
	}
	org, err := s.repo.Create(ctx, Organization{Name: form.Name, Description: form.Description})
	if err != nil {
		return Organization{}, err
	}
	s.recordAudit(ctx, actor, "organization.create", org.ID)
	return org, nil
}

// Update modifies an existing organization.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, form OrganizationForm) (Organization, error) {
	if actor.IsAnonymous() {
		return Organization{}, shared.ErrUnauthenticated
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Organization{}, err
	}
	if !s.policy.OrganizationUpdate(actor).Allowed() {
		return Organization{}, shared.ErrForbidden
	}
	if err := form.validateForm(); err != nil {
		return Organization{}, err
	}
	org, err := s.repo.Update(ctx, id, Organization{Name: form.Name, Description: form.Description})
	if err != nil {
		return Organization{}, err
	}
	s.recordAudit(ctx, actor, "organization.update", org.ID)
	return org, nil
}

// Delete removes an organization; its roles go with it, its users stay
// behind with a cleared organization reference.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if actor.IsAnonymous() {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if !s.policy.OrganizationDelete(actor).Allowed() {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "organization.delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor policy.Actor, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	event := shared.AuditEvent{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "organization",
		EntityID: strconv.FormatInt(entityID, 10),
		At:       time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("record audit event", slog.String("action", action), slog.Any("error", err))
	}
}
