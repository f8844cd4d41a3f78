package authz

import (
	"testing"

	"budgetme/internal/models"
)

func TestDecideChangeRole(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Role
		target  models.Role
		newRole models.Role
		allowed bool
		reason  models.ErrorCode
	}{
		{
			name:    "owner promotes member to admin",
			actor:   models.RoleOwner,
			target:  models.RoleMember,
			newRole: models.RoleAdmin,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "owner demotes admin to viewer",
			actor:   models.RoleOwner,
			target:  models.RoleAdmin,
			newRole: models.RoleViewer,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "admin promotes viewer to member",
			actor:   models.RoleAdmin,
			target:  models.RoleViewer,
			newRole: models.RoleMember,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "admin demotes another admin",
			actor:   models.RoleAdmin,
			target:  models.RoleAdmin,
			newRole: models.RoleMember,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "no-op role change is allowed",
			actor:   models.RoleOwner,
			target:  models.RoleMember,
			newRole: models.RoleMember,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "member cannot change roles",
			actor:   models.RoleMember,
			target:  models.RoleViewer,
			newRole: models.RoleMember,
			allowed: false,
			reason:  models.CodeNotAuthorizedMember,
		},
		{
			name:    "viewer cannot change roles",
			actor:   models.RoleViewer,
			target:  models.RoleViewer,
			newRole: models.RoleMember,
			allowed: false,
			reason:  models.CodeNotAuthorizedViewer,
		},
		{
			name:    "admin cannot change the owner's role",
			actor:   models.RoleAdmin,
			target:  models.RoleOwner,
			newRole: models.RoleMember,
			allowed: false,
			reason:  models.CodeAdminCannotManageOwner,
		},
		{
			name:    "owner cannot demote themselves via role change",
			actor:   models.RoleOwner,
			target:  models.RoleOwner,
			newRole: models.RoleAdmin,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
		{
			name:    "nobody is promoted to owner via role change",
			actor:   models.RoleOwner,
			target:  models.RoleAdmin,
			newRole: models.RoleOwner,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
		{
			name:    "admin cannot assign owner either",
			actor:   models.RoleAdmin,
			target:  models.RoleMember,
			newRole: models.RoleOwner,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
		{
			name:    "unknown new role is rejected",
			actor:   models.RoleOwner,
			target:  models.RoleMember,
			newRole: models.Role("superuser"),
			allowed: false,
			reason:  models.CodeInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.actor, ActionChangeRole, tt.target, tt.newRole)
			if decision.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if decision.Reason != tt.reason {
				t.Errorf("Reason = %v, want %v", decision.Reason, tt.reason)
			}
		})
	}
}

func TestDecideRemoveMember(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Role
		target  models.Role
		allowed bool
		reason  models.ErrorCode
	}{
		{
			name:    "owner removes admin",
			actor:   models.RoleOwner,
			target:  models.RoleAdmin,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "owner removes member",
			actor:   models.RoleOwner,
			target:  models.RoleMember,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "admin removes member",
			actor:   models.RoleAdmin,
			target:  models.RoleMember,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "admin removes viewer",
			actor:   models.RoleAdmin,
			target:  models.RoleViewer,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "admin removes another admin",
			actor:   models.RoleAdmin,
			target:  models.RoleAdmin,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "member cannot remove anyone",
			actor:   models.RoleMember,
			target:  models.RoleViewer,
			allowed: false,
			reason:  models.CodeNotAuthorizedMember,
		},
		{
			name:    "viewer cannot remove anyone",
			actor:   models.RoleViewer,
			target:  models.RoleMember,
			allowed: false,
			reason:  models.CodeNotAuthorizedViewer,
		},
		{
			name:    "admin cannot remove the owner",
			actor:   models.RoleAdmin,
			target:  models.RoleOwner,
			allowed: false,
			reason:  models.CodeAdminCannotManageOwner,
		},
		{
			name:    "owner cannot remove themselves without a transfer",
			actor:   models.RoleOwner,
			target:  models.RoleOwner,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.actor, ActionRemoveMember, tt.target, "")
			if decision.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if decision.Reason != tt.reason {
				t.Errorf("Reason = %v, want %v", decision.Reason, tt.reason)
			}
		})
	}
}

func TestDecideTransferOwnership(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Role
		target  models.Role
		allowed bool
		reason  models.ErrorCode
	}{
		{
			name:    "owner transfers to admin",
			actor:   models.RoleOwner,
			target:  models.RoleAdmin,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "owner transfers to member",
			actor:   models.RoleOwner,
			target:  models.RoleMember,
			allowed: true,
			reason:  models.CodeAllowed,
		},
		{
			name:    "owner cannot transfer to viewer",
			actor:   models.RoleOwner,
			target:  models.RoleViewer,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
		{
			name:    "owner cannot transfer to themselves",
			actor:   models.RoleOwner,
			target:  models.RoleOwner,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
		{
			name:    "admin cannot initiate a transfer",
			actor:   models.RoleAdmin,
			target:  models.RoleMember,
			allowed: false,
			reason:  models.CodeInvalidOwnershipTransfer,
		},
		{
			name:    "member cannot initiate a transfer",
			actor:   models.RoleMember,
			target:  models.RoleAdmin,
			allowed: false,
			reason:  models.CodeNotAuthorizedMember,
		},
		{
			name:    "viewer cannot initiate a transfer",
			actor:   models.RoleViewer,
			target:  models.RoleAdmin,
			allowed: false,
			reason:  models.CodeNotAuthorizedViewer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.actor, ActionTransferOwnership, tt.target, models.RoleOwner)
			if decision.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if decision.Reason != tt.reason {
				t.Errorf("Reason = %v, want %v", decision.Reason, tt.reason)
			}
		})
	}
}

func TestDecideInvalidRoles(t *testing.T) {
	actions := []Action{ActionChangeRole, ActionRemoveMember, ActionTransferOwnership}

	for _, action := range actions {
		t.Run(string(action)+" invalid actor", func(t *testing.T) {
			decision := Decide(models.Role("bogus"), action, models.RoleMember, models.RoleAdmin)
			if decision.Allowed {
				t.Error("invalid actor role must be denied")
			}
			if decision.Reason != models.CodeNotAuthorized {
				t.Errorf("Reason = %v, want %v", decision.Reason, models.CodeNotAuthorized)
			}
		})

		t.Run(string(action)+" invalid target", func(t *testing.T) {
			decision := Decide(models.RoleOwner, action, models.Role(""), models.RoleAdmin)
			if decision.Allowed {
				t.Error("invalid target role must be denied")
			}
			if decision.Reason != models.CodeNotAuthorized {
				t.Errorf("Reason = %v, want %v", decision.Reason, models.CodeNotAuthorized)
			}
		})
	}
}

// Enumerate every combination and assert the structural invariants no single
// case should be able to violate: denials always carry a reason, member and
// viewer actors never mutate, and no decision hands out the owner role
// outside an explicit transfer.
func TestDecideInvariants(t *testing.T) {
	roles := []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleMember, models.RoleViewer}
	actions := []Action{ActionChangeRole, ActionRemoveMember, ActionTransferOwnership}

	for _, actor := range roles {
		for _, action := range actions {
			for _, target := range roles {
				for _, newRole := range roles {
					decision := Decide(actor, action, target, newRole)

					if !decision.Allowed && decision.Reason == models.CodeAllowed {
						t.Errorf("%v %v %v->%v: denial without reason", actor, action, target, newRole)
					}
					if decision.Allowed && decision.Reason != models.CodeAllowed {
						t.Errorf("%v %v %v->%v: allow with denial reason %v", actor, action, target, newRole, decision.Reason)
					}
					if (actor == models.RoleMember || actor == models.RoleViewer) && decision.Allowed {
						t.Errorf("%v %v %v->%v: non-managing role allowed to mutate", actor, action, target, newRole)
					}
					if action == ActionChangeRole && newRole == models.RoleOwner && decision.Allowed {
						t.Errorf("%v %v %v->%v: owner role assigned outside a transfer", actor, action, target, newRole)
					}
					if action == ActionTransferOwnership && actor != models.RoleOwner && decision.Allowed {
						t.Errorf("%v %v %v->%v: non-owner allowed to transfer ownership", actor, action, target, newRole)
					}
					if target == models.RoleOwner && action != ActionTransferOwnership && decision.Allowed {
						t.Errorf("%v %v %v->%v: owner mutated outside a transfer", actor, action, target, newRole)
					}
				}
			}
		}
	}
}
