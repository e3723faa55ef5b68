// Package policy implements the authorization decision engine for the
// organization-management API. Decisions are pure functions of the actor's
// capability set; the engine performs no I/O and holds no state.
package policy

// Decision is the typed outcome of a policy check. Denial is a result, not
// an error; callers map it to a rejection response.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Engine exposes one decision method per resource-action pair. It is
// injected into services explicitly; there is no process-wide registry.
type Engine struct{}

// NewEngine constructs an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// decide allows the action if the actor holds any of the listed
// capabilities. Superusers bypass every check.
func (e *Engine) decide(a Actor, caps ...Capability) Decision {
	if a.Can(CapSuperuser) {
		return Allow
	}
	for _, c := range caps {
		if a.Can(c) {
			return Allow
		}
	}
	return Deny
}

// grantGated allows superusers unconditionally and admins only when they
// also hold the named grant.
func (e *Engine) grantGated(a Actor, grant Capability) Decision {
	if a.Can(CapSuperuser) {
		return Allow
	}
	if a.Can(CapAdmin) && a.Can(grant) {
		return Allow
	}
	return Deny
}

// Organization decisions.

func (e *Engine) OrganizationCreate(a Actor) Decision {
	return e.decide(a, CapAdmin, CapManager, CapMember)
}

func (e *Engine) OrganizationList(a Actor) Decision {
	return e.decide(a, CapAdmin, CapManager, CapMember)
}

func (e *Engine) OrganizationRetrieve(a Actor) Decision {
	return e.decide(a, CapAdmin, CapManager, CapMember)
}

func (e *Engine) OrganizationUpdate(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) OrganizationDelete(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

// Role decisions. All five actions require the admin tier.

func (e *Engine) RoleCreate(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) RoleList(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) RoleRetrieve(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) RoleUpdate(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) RoleDelete(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

// User decisions. Update and delete are gated on fine-grained grants: the
// admin flag alone is not enough.

func (e *Engine) UserCreate(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) UserList(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) UserRetrieve(a Actor) Decision {
	return e.decide(a, CapAdmin)
}

func (e *Engine) UserUpdate(a Actor) Decision {
	return e.grantGated(a, CapChangeUser)
}

func (e *Engine) UserDelete(a Actor) Decision {
	return e.grantGated(a, CapDeleteUser)
}

// AssignRoles decides the distinguished role-assignment action. Managers
// and members are never allowed, with or without grants.
func (e *Engine) AssignRoles(a Actor) Decision {
	return e.grantGated(a, CapAssignRoles)
}
