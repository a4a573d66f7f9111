package identity

import "github.com/google/uuid"

// Actor is the authenticated caller of an operation: who they are, what role
// they hold, and (for non-admin roles) which branch they are pinned to.
// Every branch-scoping and price-authorization decision reads from it.
type Actor struct {
	Username   string
	Role       Role
	BranchID   *uuid.UUID
	BranchCode *string
}

// IsAdmin reports whether the actor holds the Admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasBranch reports whether the actor carries a resolved branch assignment
func (a Actor) HasBranch() bool {
	return a.BranchID != nil && a.BranchCode != nil
}
