package inventory

import (
	"fmt"

	"github.com/henrytires/backend/internal/domain/identity"
	"github.com/henrytires/backend/internal/domain/shared"
)

// ResolveBranchForWrite decides which branch a mutating operation targets.
// Admins must name the branch explicitly; leaving it out is a hard
// validation error so an Admin never silently writes to the wrong branch.
// Non-admins are always forced to their assigned branch and a mismatching
// request is ignored in favor of the assignment, not rejected.
func ResolveBranchForWrite(actor identity.Actor, requestedBranchCode string) (string, error) {
	if actor.IsAdmin() {
		if requestedBranchCode == "" {
			return "", shared.NewValidationError("Branch code is required for administrator operations")
		}
		return requestedBranchCode, nil
	}

	if !actor.HasBranch() {
		return "", shared.NewUnauthorizedError(fmt.Sprintf(
			"User %s has no branch assignment", actor.Username))
	}
	return *actor.BranchCode, nil
}

// ResolveBranchForRead decides which branch a query is scoped to. Admins may
// query any branch, or all branches by leaving the code empty. Non-admins
// are silently restricted to their assigned branch regardless of what they
// asked for; a branch user's own-branch queries never fail on scoping.
func ResolveBranchForRead(actor identity.Actor, requestedBranchCode string) (string, error) {
	if actor.IsAdmin() {
		return requestedBranchCode, nil
	}

	if !actor.HasBranch() {
		return "", shared.NewUnauthorizedError(fmt.Sprintf(
			"User %s has no branch assignment", actor.Username))
	}
	return *actor.BranchCode, nil
}
