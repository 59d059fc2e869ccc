package authz

// Ability names evaluated against a resource.
const (
	AbilityView   = "view"
	AbilityStore  = "store"
	AbilityUpdate = "update"
	AbilityDelete = "delete"
	AbilityList   = "list"
)

// UserListParams carries the list-scope inputs the policy rules on.
type UserListParams struct {
	// Role is the requested role filter, empty when absent.
	Role string
}

// UserPolicy decides access to User resources.
//
// Superadmins bypass the ability rules except for store, update and delete,
// which still enforce the escalation and self-deletion guards. Plain users
// may never act on User resources.
type UserPolicy struct{}

func (UserPolicy) before(actor Actor, ability string) Decision {
	if actor.Role == RoleSuperAdmin {
		switch ability {
		case AbilityStore, AbilityUpdate, AbilityDelete:
			return Continue
		default:
			return Allow
		}
	}
	if actor.Role == RoleUser {
		return Deny
	}
	return Continue
}

// View permits access when the actor outranks the target or is the target.
func (p UserPolicy) View(actor Actor, target Principal) bool {
	return Evaluate(
		func() Decision { return p.before(actor, AbilityView) },
		func() Decision { return allowIf(HierarchicallyAllowed(actor, target)) },
	)
}

// Store permits creating a user with the requested role. No caller may ever
// create a superadmin. The role arrives as the raw request string; whether
// it names a valid role at all is validation's concern, not the policy's.
func (p UserPolicy) Store(actor Actor, requestedRole string) bool {
	return Evaluate(
		func() Decision { return p.before(actor, AbilityStore) },
		func() Decision {
			if requestedRole == RoleSuperAdmin.String() {
				return Deny
			}
			if actor.Role == RoleSuperAdmin {
				return Allow
			}
			return allowIf(actor.Role == RoleAdmin && roleNameAmongLower(actor.Role, requestedRole))
		},
	)
}

// Update permits mutating the target, optionally reassigning its role.
// An empty newRole leaves the role untouched; a non-empty one must sit
// strictly below the actor's own role, so neither peers nor superadmins
// can ever be minted through this path.
func (p UserPolicy) Update(actor Actor, target Principal, newRole string) bool {
	return Evaluate(
		func() Decision { return p.before(actor, AbilityUpdate) },
		func() Decision {
			if newRole == RoleSuperAdmin.String() {
				return Deny
			}
			if !HierarchicallyAllowed(actor, target) {
				return Deny
			}
			return allowIf(newRole == "" || roleNameAmongLower(actor.Role, newRole))
		},
	)
}

func roleNameAmongLower(actor Role, name string) bool {
	for _, role := range LowerRoles(actor) {
		if role.String() == name {
			return true
		}
	}
	return false
}

// Delete permits removing the target. Self-deletion is always refused.
func (p UserPolicy) Delete(actor Actor, target Principal) bool {
	return Evaluate(
		func() Decision { return p.before(actor, AbilityDelete) },
		func() Decision {
			if actor.ID == target.ID {
				return Deny
			}
			return allowIf(HierarchicallyAllowed(actor, target))
		},
	)
}

// List permits listing users under the requested scope. Admins may only
// scope to roles strictly below their own.
func (p UserPolicy) List(actor Actor, params UserListParams) bool {
	return Evaluate(
		func() Decision { return p.before(actor, AbilityList) },
		func() Decision {
			if params.Role != "" {
				requested, err := ParseRole(params.Role)
				if err != nil {
					return Deny
				}
				if actor.Role == RoleAdmin && !RoleAmong(requested, LowerRoles(actor.Role)) {
					return Deny
				}
			}
			return allowIf(actor.Role >= RoleAdmin)
		},
	)
}
