package service

import (
	"fmt"

	"budgetme/internal/authz"
	"budgetme/internal/database"
	"budgetme/internal/models"
	"budgetme/internal/repository"
)

// Audit action names for membership commands
const (
	auditChangeRole        = "change_role"
	auditRemoveMember      = "remove_member"
	auditTransferOwnership = "transfer_ownership"
)

// MembershipService orchestrates role changes, member removal and ownership
// transfers. Every mutation is authorized by the authz engine against a
// snapshot, then re-validated under row locks inside the transaction so a
// concurrent role change surfaces as STALE_ROLE_STATE instead of a lost
// update.
type MembershipService struct {
	db         *database.DB
	familyRepo *repository.FamilyRepository
	audit      *AuditLogger
}

// NewMembershipService creates a new membership service
func NewMembershipService(db *database.DB, familyRepo *repository.FamilyRepository, audit *AuditLogger) *MembershipService {
	return &MembershipService{
		db:         db,
		familyRepo: familyRepo,
		audit:      audit,
	}
}

func roleChangeFailure(code models.ErrorCode) models.RoleChangeResult {
	return models.RoleChangeResult{Success: false, ErrorCode: code}
}

// loadActiveMember fetches a member snapshot; a missing or non-active member
// reads as not found.
func (s *MembershipService) loadActiveMember(familyID, userID int64) (*models.FamilyMember, error) {
	member, err := s.familyRepo.GetMember(familyID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil || !member.IsActive() {
		return nil, nil
	}
	return member, nil
}

// ChangeRole updates a member's role after authorization. The target's and
// actor's roles are re-read under lock inside the transaction; if either
// changed since the snapshot the command fails with STALE_ROLE_STATE and the
// client may retry.
func (s *MembershipService) ChangeRole(familyID, actorUserID, targetUserID int64, newRole models.Role) (models.RoleChangeResult, error) {
	if !newRole.Valid() {
		return roleChangeFailure(models.CodeInvalidRole), nil
	}

	actor, err := s.loadActiveMember(familyID, actorUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if actor == nil {
		return roleChangeFailure(models.CodeMemberNotFound), nil
	}
	target, err := s.loadActiveMember(familyID, targetUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if target == nil {
		return roleChangeFailure(models.CodeMemberNotFound), nil
	}

	decision := authz.Decide(actor.Role, authz.ActionChangeRole, target.Role, newRole)
	if decision.Allowed && actorUserID == targetUserID {
		// The engine only sees roles, not identity. Nobody edits their own
		// role: the owner's moves through an explicit transfer, everyone
		// else's through another manager.
		decision = authz.Decision{Reason: models.CodeNotAuthorized}
	}
	if !decision.Allowed {
		s.audit.Append(actorUserID, auditChangeRole, targetUserID, string(decision.Reason))
		return roleChangeFailure(decision.Reason), nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Close the race between the snapshot read and the commit: re-read both
	// roles under lock and bail out if anything moved.
	stale, err := s.rolesChanged(tx, familyID, actor, target)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if stale {
		return roleChangeFailure(models.CodeStaleRoleState), nil
	}

	if err := s.familyRepo.UpdateMemberRole(tx, familyID, targetUserID, newRole); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to change role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to commit role change: %w", err)
	}

	s.audit.Append(actorUserID, auditChangeRole, targetUserID, string(models.CodeAllowed))
	return models.RoleChangeResult{Success: true}, nil
}

// RemoveMember removes a member after authorization. The engine already
// rejects removing the owner; the post-lock re-read additionally closes the
// race where the target became owner between snapshot and commit.
func (s *MembershipService) RemoveMember(familyID, actorUserID, targetUserID int64) (models.RoleChangeResult, error) {
	actor, err := s.loadActiveMember(familyID, actorUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if actor == nil {
		return roleChangeFailure(models.CodeMemberNotFound), nil
	}
	target, err := s.loadActiveMember(familyID, targetUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if target == nil {
		return roleChangeFailure(models.CodeMemberNotFound), nil
	}

	decision := authz.Decide(actor.Role, authz.ActionRemoveMember, target.Role, "")
	if !decision.Allowed {
		s.audit.Append(actorUserID, auditRemoveMember, targetUserID, string(decision.Reason))
		return roleChangeFailure(decision.Reason), nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stale, err := s.rolesChanged(tx, familyID, actor, target)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if stale {
		return roleChangeFailure(models.CodeStaleRoleState), nil
	}

	// Re-validate post-lock: never remove whoever holds ownership now.
	lockedTarget, err := s.familyRepo.GetMemberForUpdate(tx, familyID, targetUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if lockedTarget == nil || lockedTarget.Role == models.RoleOwner {
		return roleChangeFailure(models.CodeStaleRoleState), nil
	}

	if err := s.familyRepo.MarkMemberRemoved(tx, familyID, targetUserID); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to remove member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to commit member removal: %w", err)
	}

	s.audit.Append(actorUserID, auditRemoveMember, targetUserID, string(models.CodeAllowed))
	return models.RoleChangeResult{Success: true}, nil
}

// TransferOwnership atomically demotes the current owner to admin and
// promotes the named successor to owner. Both row updates commit together or
// not at all, so the family always has exactly one owner.
func (s *MembershipService) TransferOwnership(familyID, actorUserID, newOwnerUserID int64) (models.RoleChangeResult, error) {
	actor, err := s.loadActiveMember(familyID, actorUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if actor == nil {
		return roleChangeFailure(models.CodeMemberNotFound), nil
	}
	successor, err := s.loadActiveMember(familyID, newOwnerUserID)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if successor == nil {
		return roleChangeFailure(models.CodeMemberNotFound), nil
	}

	decision := authz.Decide(actor.Role, authz.ActionTransferOwnership, successor.Role, models.RoleOwner)
	if !decision.Allowed {
		s.audit.Append(actorUserID, auditTransferOwnership, newOwnerUserID, string(decision.Reason))
		return roleChangeFailure(decision.Reason), nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stale, err := s.rolesChanged(tx, familyID, actor, successor)
	if err != nil {
		return models.RoleChangeResult{}, err
	}
	if stale {
		return roleChangeFailure(models.CodeStaleRoleState), nil
	}

	// Two-row update: old owner steps down, successor steps up. A failure on
	// either side rolls back both, so a single-legged transfer never persists.
	if err := s.familyRepo.UpdateMemberRole(tx, familyID, actorUserID, models.RoleAdmin); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to demote current owner: %w", err)
	}
	if err := s.familyRepo.UpdateMemberRole(tx, familyID, newOwnerUserID, models.RoleOwner); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to promote new owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.RoleChangeResult{}, fmt.Errorf("failed to commit ownership transfer: %w", err)
	}

	s.audit.Append(actorUserID, auditTransferOwnership, newOwnerUserID, string(models.CodeAllowed))
	return models.RoleChangeResult{Success: true}, nil
}

// rolesChanged re-reads both members under lock and reports whether either
// role or status moved since the snapshot.
func (s *MembershipService) rolesChanged(tx *database.Tx, familyID int64, snapshots ...*models.FamilyMember) (bool, error) {
	for _, snapshot := range snapshots {
		current, err := s.familyRepo.GetMemberForUpdate(tx, familyID, snapshot.UserID)
		if err != nil {
			return false, err
		}
		if current == nil || current.Role != snapshot.Role || current.Status != snapshot.Status {
			return true, nil
		}
	}
	return false, nil
}
