// Package authz is the role authorization engine: a pure decision table
// over roles and membership actions. It has no storage knowledge and no
// side effects, so every (actor, action, target) combination can be
// enumerated in tests.
package authz

import "budgetme/internal/models"

// Action is a role-management operation submitted for a decision.
type Action string

const (
	ActionChangeRole        Action = "change_role"
	ActionRemoveMember      Action = "remove_member"
	ActionTransferOwnership Action = "transfer_ownership"
)

// Decision is the engine's verdict. Reason is always set: CodeAllowed on
// allow, otherwise a specific denial code callers surface verbatim.
type Decision struct {
	Allowed bool
	Reason  models.ErrorCode
}

func allow() Decision {
	return Decision{Allowed: true, Reason: models.CodeAllowed}
}

func deny(reason models.ErrorCode) Decision {
	return Decision{Reason: reason}
}

// Decide evaluates whether an actor with the given role may perform action
// against a target with the given role. For ActionChangeRole, newRole is
// the requested role; it is ignored for the other actions.
//
// Ownership is singular: any path that could leave a family with zero or
// two owners is denied here, before it can reach the store.
func Decide(actor models.Role, action Action, target, newRole models.Role) Decision {
	if !actor.Valid() || !target.Valid() {
		return deny(models.CodeNotAuthorized)
	}

	switch actor {
	case models.RoleMember:
		return deny(models.CodeNotAuthorizedMember)
	case models.RoleViewer:
		return deny(models.CodeNotAuthorizedViewer)
	}

	// Actor is owner or admin from here on.
	switch action {
	case ActionChangeRole:
		if !newRole.Valid() {
			return deny(models.CodeInvalidRole)
		}
		if newRole == models.RoleOwner {
			// The owner role is only assigned through an explicit transfer.
			return deny(models.CodeInvalidOwnershipTransfer)
		}
		if target == models.RoleOwner {
			if actor == models.RoleAdmin {
				return deny(models.CodeAdminCannotManageOwner)
			}
			// An owner demoting themselves without naming a successor
			// would leave the family ownerless.
			return deny(models.CodeInvalidOwnershipTransfer)
		}
		return allow()

	case ActionRemoveMember:
		if target == models.RoleOwner {
			if actor == models.RoleAdmin {
				return deny(models.CodeAdminCannotManageOwner)
			}
			return deny(models.CodeInvalidOwnershipTransfer)
		}
		return allow()

	case ActionTransferOwnership:
		if actor != models.RoleOwner {
			return deny(models.CodeInvalidOwnershipTransfer)
		}
		// Ownership moves only to an admin or member; transferring to a
		// viewer or to the current owner is rejected.
		if target != models.RoleAdmin && target != models.RoleMember {
			return deny(models.CodeInvalidOwnershipTransfer)
		}
		return allow()
	}

	return deny(models.CodeNotAuthorized)
}
