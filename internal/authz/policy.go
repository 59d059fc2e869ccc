package authz

import "context"

// Actor is the authenticated caller of a request. Immutable per request.
type Actor struct {
	ID     int64
	Role   Role
	Status Status
}

// Principal is the owner-side view of a subject: just enough identity to
// decide hierarchy questions.
type Principal struct {
	ID   int64
	Role Role
}

// Principal converts the actor into its owner-side view.
func (a Actor) Principal() Principal {
	return Principal{ID: a.ID, Role: a.Role}
}

// HierarchicallyAllowed reports whether the actor may act on a subject
// owned by owner: either the actor strictly outranks the owner, or the
// subject is the actor itself.
func HierarchicallyAllowed(actor Actor, owner Principal) bool {
	if Dominates(actor.Role, owner.Role) {
		return true
	}
	return actor.ID == owner.ID
}

// PrincipalResolver looks up the owner-side view of a user by id. Policies
// stay free of storage concerns; the service layer supplies this.
type PrincipalResolver func(ctx context.Context, id int64) (*Principal, error)
