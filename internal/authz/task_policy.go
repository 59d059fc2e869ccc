package authz

import "context"

// TaskPolicy decides access to Task resources. Decisions depend only on the
// actor and the task owner; storage lookups needed by store/list are
// delegated to a PrincipalResolver so the rules stay pure.
//
// Superadmins pass every task ability unconditionally.
type TaskPolicy struct{}

func (TaskPolicy) before(actor Actor) Decision {
	if actor.Role == RoleSuperAdmin {
		return Allow
	}
	return Continue
}

// View permits reading a task owned by owner.
func (p TaskPolicy) View(actor Actor, owner Principal) bool {
	return Evaluate(
		func() Decision { return p.before(actor) },
		func() Decision { return allowIf(HierarchicallyAllowed(actor, owner)) },
	)
}

// Store permits creating a task for the given owner id. Tasks cannot be
// created ownerless; anyone may self-assign; assigning to someone else
// requires outranking them. Resolver errors propagate, they are never
// folded into a denial.
func (p TaskPolicy) Store(ctx context.Context, actor Actor, ownerID int64, resolve PrincipalResolver) (bool, error) {
	if d := p.before(actor); d != Continue {
		return d == Allow, nil
	}
	if ownerID == 0 {
		return false, nil
	}
	if actor.ID == ownerID {
		return true, nil
	}
	owner, err := resolve(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if owner == nil {
		return false, nil
	}
	return HierarchicallyAllowed(actor, *owner), nil
}

// Update permits mutating a task. An owner may always edit their own task,
// but handing ownership to someone else takes admin rank or better.
func (p TaskPolicy) Update(actor Actor, owner Principal, newOwnerID *int64) bool {
	return Evaluate(
		func() Decision { return p.before(actor) },
		func() Decision {
			if actor.ID == owner.ID {
				if newOwnerID != nil && *newOwnerID != 0 && *newOwnerID != actor.ID && actor.Role < RoleAdmin {
					return Deny
				}
				return Allow
			}
			return allowIf(HierarchicallyAllowed(actor, owner))
		},
	)
}

// Delete permits removing a task: its owner, or anyone outranking the owner.
func (p TaskPolicy) Delete(actor Actor, owner Principal) bool {
	return Evaluate(
		func() Decision { return p.before(actor) },
		func() Decision {
			if actor.ID == owner.ID {
				return Allow
			}
			return allowIf(HierarchicallyAllowed(actor, owner))
		},
	)
}

// List permits listing tasks for the requested owner scope. With no owner
// requested the query layer defaults the scope to the actor, so the check
// passes; with one requested the actor must be hierarchically allowed over
// that user.
func (p TaskPolicy) List(ctx context.Context, actor Actor, ownerID *int64, resolve PrincipalResolver) (bool, error) {
	if d := p.before(actor); d != Continue {
		return d == Allow, nil
	}
	if ownerID == nil || *ownerID == 0 {
		return true, nil
	}
	owner, err := resolve(ctx, *ownerID)
	if err != nil {
		return false, err
	}
	if owner == nil {
		return false, nil
	}
	return HierarchicallyAllowed(actor, *owner), nil
}
