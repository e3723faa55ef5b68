package roles

import "time"

// Role is scoped to exactly one organization and is deleted with it. Role
// names are organization-defined data; the policy engine treats the literal
// names "Manager" and "Member" as privileged tokens wherever they appear.
type Role struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	OrganizationID int64     `json:"organization"`
	CreatedAt      time.Time `json:"created_at"`
}
