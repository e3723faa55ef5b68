package organizations

import (
	"strings"

	"github.com/orgdesk/orgdesk/internal/shared"
)

var validate = shared.NewValidator()

// OrganizationForm represents the payload for creating/updating an organization.
type OrganizationForm struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

func (f *OrganizationForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
}

func (f *OrganizationForm) validateForm() error {
	f.normalize()
	if err := validate.Struct(f); err != nil {
		if vErr := shared.ValidationErrorFrom(err); vErr != nil {
			return vErr
		}
		return err
	}
	return nil
}
