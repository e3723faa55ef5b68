package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/orgdesk/orgdesk/internal/shared"
)

var (
	validate = shared.NewValidator()
	fold     = cases.Fold()
)

// UserForm represents the payload for creating/updating a user. Password is
// required on create and optional on update.
type UserForm struct {
	Username       string  `json:"username" validate:"required,max=150"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"omitempty,min=8"`
	OrganizationID *int64  `json:"organization"`
	RoleIDs        []int64 `json:"roles"`
	IsStaff        bool    `json:"is_staff"`
	IsActive       *bool   `json:"is_active"`
}

// AssignRolesForm carries role ids for the role-assignment operation.
type AssignRolesForm struct {
	RoleIDs []int64 `json:"roles"`
}

func (f *UserForm) normalize() {
	// Usernames and emails are globally unique; Unicode case folding keeps
	// lookalike spellings from slipping past the uniqueness constraints.
	f.Username = fold.String(strings.TrimSpace(f.Username))
	f.Email = fold.String(strings.TrimSpace(f.Email))
}

func (f *UserForm) active() bool {
	if f.IsActive == nil {
		return true
	}
	return *f.IsActive
}

// validateForm checks payload shape plus referential existence of the
// organization and role ids. Unlike the role-assignment operation, CRUD
// payloads reject unknown role ids.
func (f *UserForm) validateForm(ctx context.Context, repo RepositoryPort, requirePassword bool) error {
	f.normalize()
	vErr := shared.NewValidationError()
	if err := validate.Struct(f); err != nil {
		mapped := shared.ValidationErrorFrom(err)
		if mapped == nil {
			return err
		}
		vErr = mapped
	}
	if requirePassword && f.Password == "" {
		vErr.Add("password", "this field is required")
	}
	if f.OrganizationID != nil {
		exists, err := repo.OrganizationExists(ctx, *f.OrganizationID)
		if err != nil {
			return err
		}
		if !exists {
			vErr.Add("organization", "organization does not exist")
		}
	}
	if len(f.RoleIDs) > 0 {
		known, err := repo.FilterRoleIDs(ctx, f.RoleIDs)
		if err != nil {
			return err
		}
		if len(known) != len(f.RoleIDs) {
			keep := make(map[int64]struct{}, len(known))
			for _, id := range known {
				keep[id] = struct{}{}
			}
			for _, id := range f.RoleIDs {
				if _, ok := keep[id]; !ok {
					vErr.Add("roles", fmt.Sprintf("role %d does not exist", id))
				}
			}
		}
	}
	if !vErr.Empty() {
		return vErr
	}
	return nil
}
