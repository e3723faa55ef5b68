package users

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/orgdesk/orgdesk/internal/policy"
	"github.com/orgdesk/orgdesk/internal/shared"
)

// PasswordHasher hashes secrets for storage. Implemented by the auth
// service; the credential scheme itself is out of scope here.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// Service orchestrates user CRUD plus the distinguished role-assignment and
// self-service deletion operations.
type Service struct {
	repo   RepositoryPort
	policy *policy.Engine
	hasher PasswordHasher
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, engine *policy.Engine, hasher PasswordHasher, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: engine, hasher: hasher, audit: audit, logger: logger}
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, actor policy.Actor, page, perPage int) ([]User, shared.Pagination, error) {
	if actor.IsAnonymous() {
		return nil, shared.Pagination{}, shared.ErrUnauthenticated
	}
	if !s.policy.UserList(actor).Allowed() {
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

// Get fetches a single user, existence checked before policy.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (User, error) {
	if actor.IsAnonymous() {
		return User{}, shared.ErrUnauthenticated
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !s.policy.UserRetrieve(actor).Allowed() {
		return User{}, shared.ErrForbidden
	}
	return user, nil
}

// Create inserts a new user. The password is hashed through the credential
// store; the superuser flag is never settable through the payload.
func (s *Service) Create(ctx context.Context, actor policy.Actor, form UserForm) (User, error) {
	if actor.IsAnonymous() {
		return User{}, shared.ErrUnauthenticated
	}
	if !s.policy.UserCreate(actor).Allowed() {
		return User{}, shared.ErrForbidden
	}
	if err := form.validateForm(ctx, s.repo, true); err != nil {
		return User{}, err
	}
	hash, err := s.hasher.HashPassword(form.Password)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx, User{
		Username:       form.Username,
		Email:          form.Email,
		PasswordHash:   hash,
		OrganizationID: form.OrganizationID,
		RoleIDs:        form.RoleIDs,
		IsStaff:        form.IsStaff,
		IsActive:       form.active(),
	})
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor, "user.create", user.ID)
	return user, nil
}

// Update modifies an existing user. An empty password keeps the stored
// credential untouched.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, form UserForm) (User, error) {
	if actor.IsAnonymous() {
		return User{}, shared.ErrUnauthenticated
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !s.policy.UserUpdate(actor).Allowed() {
		return User{}, shared.ErrForbidden
	}
	if err := form.validateForm(ctx, s.repo, false); err != nil {
		return User{}, err
	}
	hash := existing.PasswordHash
	if form.Password != "" {
		hash, err = s.hasher.HashPassword(form.Password)
		if err != nil {
			return User{}, err
		}
	}
	user, err := s.repo.Update(ctx, id, User{
		Username:       form.Username,
		Email:          form.Email,
		PasswordHash:   hash,
		OrganizationID: form.OrganizationID,
		RoleIDs:        form.RoleIDs,
		IsStaff:        form.IsStaff,
		IsActive:       form.active(),
	})
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor, "user.update", user.ID)
	return user, nil
}

// Delete removes a user through the policy-guarded path.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if actor.IsAnonymous() {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if !s.policy.UserDelete(actor).Allowed() {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "user.delete", id)
	return nil
}

// AssignRoles replaces the target user's entire role set with the resolved
// ids. Unknown role ids are dropped silently, not rejected; assigning an
// empty list clears all roles.
func (s *Service) AssignRoles(ctx context.Context, actor policy.Actor, targetUserID int64, roleIDs []int64) (string, error) {
	if actor.IsAnonymous() {
		return "", shared.ErrUnauthenticated
	}
	target, err := s.repo.Get(ctx, targetUserID)
	if err != nil {
		return "", err
	}
	if !s.policy.AssignRoles(actor).Allowed() {
		return "", shared.ErrForbidden
	}
	resolved, err := s.repo.FilterRoleIDs(ctx, roleIDs)
	if err != nil {
		return "", err
	}
	if err := s.repo.ReplaceRoles(ctx, target.ID, resolved); err != nil {
		return "", err
	}
	s.recordAudit(ctx, actor, "user.assign_roles", target.ID)
	return "Roles assigned successfully", nil
}

// SelfDelete is the standalone deletion path: authentication is required,
// but no policy rule is consulted. Callers decide whether to expose it at
// all; see the SELF_DELETE_ENABLED flag.
func (s *Service) SelfDelete(ctx context.Context, actor policy.Actor, id int64) error {
	if actor.IsAnonymous() {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "user.self_delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor policy.Actor, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	event := shared.AuditEvent{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		At:       time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("record audit event", slog.String("action", action), slog.Any("error", err))
	}
}
