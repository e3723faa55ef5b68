package users

import "time"

// User is a globally unique account. The organization reference is optional
// and cleared (not cascaded) when the organization is deleted. Role
// membership is many-to-many and intentionally unconstrained by the user's
// own organization.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	OrganizationID *int64    `json:"organization"`
	RoleIDs        []int64   `json:"roles"`
	IsSuperuser    bool      `json:"is_superuser"`
	IsStaff        bool      `json:"is_staff"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
