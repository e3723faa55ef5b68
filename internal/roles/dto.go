package roles

import (
	"context"
	"strings"

	"github.com/orgdesk/orgdesk/internal/shared"
)

var validate = shared.NewValidator()

// RoleForm represents the payload for creating/updating a role.
type RoleForm struct {
	Name           string `json:"name" validate:"required,max=255"`
	Description    string `json:"description"`
	OrganizationID int64  `json:"organization" validate:"required,gt=0"`
}

func (f *RoleForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
}

// validateForm checks payload shape plus referential existence of the
// owning organization.
func (f *RoleForm) validateForm(ctx context.Context, repo RepositoryPort) error {
	f.normalize()
	if err := validate.Struct(f); err != nil {
		if vErr := shared.ValidationErrorFrom(err); vErr != nil {
			return vErr
		}
		return err
	}
	exists, err := repo.OrganizationExists(ctx, f.OrganizationID)
	if err != nil {
		return err
	}
	if !exists {
		vErr := shared.NewValidationError()
		vErr.Add("organization", "organization does not exist")
		return vErr
	}
	return nil
}
