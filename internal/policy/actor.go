package policy

// Capability is a tagged permission an actor carries for the duration of a
// single request. Capabilities are derived once, when the actor is built,
// from the user's privilege flags, role names and permission grants.
type Capability string

const (
	CapSuperuser Capability = "superuser"
	CapAdmin     Capability = "admin"
	CapManager   Capability = "manager"
	CapMember    Capability = "member"

	// Fine-grained grants, independent of the tier capabilities above.
	CapChangeUser  Capability = "change_user"
	CapDeleteUser  Capability = "delete_user"
	CapAssignRoles Capability = "assign_roles"
)

// Role names treated as privileged tokens. A role carrying one of these
// names grants the matching tier no matter which organization owns it.
const (
	RoleNameManager = "Manager"
	RoleNameMember  = "Member"
)

// Actor describes the authenticated caller of an operation. The zero value
// is the anonymous actor, which holds no capabilities.
type Actor struct {
	UserID   int64
	Username string

	caps map[Capability]struct{}
}

// NewActor derives the capability set for a user. Role membership and grants
// must be resolved fresh for the current request; nothing here is cached
// across requests.
func NewActor(userID int64, username string, isSuperuser, isStaff bool, roleNames, grantNames []string) Actor {
	caps := make(map[Capability]struct{})
	if isSuperuser {
		caps[CapSuperuser] = struct{}{}
	}
	if isStaff {
		caps[CapAdmin] = struct{}{}
	}
	for _, name := range roleNames {
		switch name {
		case RoleNameManager:
			caps[CapManager] = struct{}{}
		case RoleNameMember:
			caps[CapMember] = struct{}{}
		}
	}
	for _, name := range grantNames {
		switch Capability(name) {
		case CapChangeUser, CapDeleteUser, CapAssignRoles:
			caps[Capability(name)] = struct{}{}
		}
	}
	return Actor{UserID: userID, Username: username, caps: caps}
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// IsAnonymous reports whether the actor represents an unauthenticated caller.
func (a Actor) IsAnonymous() bool {
	return a.caps == nil && a.UserID == 0
}

// Can reports whether the actor holds the capability.
func (a Actor) Can(c Capability) bool {
	_, ok := a.caps[c]
	return ok
}
