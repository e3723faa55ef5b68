package grants

import "time"

// Grant names recognised by the policy engine. Grants are per-user
// permissions independent of role names and privilege flags.
const (
	ChangeUser  = "change_user"
	DeleteUser  = "delete_user"
	AssignRoles = "assign_roles"
)

// Grant ties a permission name to a user.
type Grant struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Known reports whether name is a recognised grant.
func Known(name string) bool {
	switch name {
	case ChangeUser, DeleteUser, AssignRoles:
		return true
	}
	return false
}
