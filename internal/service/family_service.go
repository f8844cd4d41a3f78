package service

import (
	"errors"
	"fmt"

	"budgetme/internal/database"
	"budgetme/internal/models"
	"budgetme/internal/repository"
)

var (
	ErrFamilyNotFound     = errors.New("family not found")
	ErrNotFamilyMember    = errors.New("user is not a member of this family")
	ErrNotPermitted       = errors.New("user's role does not permit this action")
	ErrFamilyPrivate      = errors.New("family does not accept join requests")
	ErrAlreadyMember      = errors.New("user is already a member of this family")
	ErrRequestPending     = errors.New("a join request is already pending")
	ErrRequestNotFound    = errors.New("join request not found")
	ErrRequestAlreadyDone = errors.New("join request was already processed")
)

// Audit action names for family lifecycle commands
const (
	auditApproveJoin = "approve_join_request"
	auditRejectJoin  = "reject_join_request"
)

// FamilyService handles family lifecycle and join requests
type FamilyService struct {
	db          *database.DB
	familyRepo  *repository.FamilyRepository
	requestRepo *repository.JoinRequestRepository
	audit       *AuditLogger
}

// NewFamilyService creates a new family service
func NewFamilyService(db *database.DB, familyRepo *repository.FamilyRepository, requestRepo *repository.JoinRequestRepository, audit *AuditLogger) *FamilyService {
	return &FamilyService{
		db:          db,
		familyRepo:  familyRepo,
		requestRepo: requestRepo,
		audit:       audit,
	}
}

// CreateFamily creates a new family with the founder as its owner
func (s *FamilyService) CreateFamily(name string, visibility models.Visibility, founderUserID int64) (*models.Family, error) {
	if name == "" {
		return nil, errors.New("family name is required")
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		visibility = models.VisibilityPrivate
	}

	family, err := s.familyRepo.CreateFamily(name, visibility, founderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return family, nil
}

// GetFamily retrieves a family by ID
func (s *FamilyService) GetFamily(familyID int64) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// GetUserFamilies retrieves all families a user belongs to
func (s *FamilyService) GetUserFamilies(userID int64) ([]models.Family, error) {
	families, err := s.familyRepo.GetUserFamilies(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user families: %w", err)
	}
	return families, nil
}

// activeMemberWithRole loads the user's membership and checks it meets the
// minimum role.
func (s *FamilyService) activeMemberWithRole(familyID, userID int64, minimum models.Role) (*models.FamilyMember, error) {
	member, err := s.familyRepo.GetMember(familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify family access: %w", err)
	}
	if member == nil || !member.IsActive() {
		return nil, ErrNotFamilyMember
	}
	if !member.Role.AtLeast(minimum) {
		return nil, ErrNotPermitted
	}
	return member, nil
}

// VerifyFamilyAccess checks that a user is an active member of a family
func (s *FamilyService) VerifyFamilyAccess(userID, familyID int64) error {
	_, err := s.activeMemberWithRole(familyID, userID, models.RoleViewer)
	return err
}

// ListMembers retrieves all active members of a family; the caller must be
// a member themselves
func (s *FamilyService) ListMembers(familyID, userID int64) ([]models.FamilyMember, []models.User, error) {
	if err := s.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, nil, err
	}
	members, users, err := s.familyRepo.ListMembers(familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get family members: %w", err)
	}
	return members, users, nil
}

// UpdateFamily updates a family's name and visibility; owner or admin only
func (s *FamilyService) UpdateFamily(familyID, actorUserID int64, name string, visibility models.Visibility) error {
	if name == "" {
		return errors.New("family name is required")
	}
	if _, err := s.activeMemberWithRole(familyID, actorUserID, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.familyRepo.UpdateFamily(familyID, name, visibility); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// DeleteFamily deletes a family and everything it owns; owner only
func (s *FamilyService) DeleteFamily(familyID, actorUserID int64) error {
	if _, err := s.activeMemberWithRole(familyID, actorUserID, models.RoleOwner); err != nil {
		return err
	}
	if err := s.familyRepo.DeleteFamily(familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

// RequestToJoin files a join request against a public family
func (s *FamilyService) RequestToJoin(familyID, userID int64) (*models.JoinRequest, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	if family.Visibility != models.VisibilityPublic {
		return nil, ErrFamilyPrivate
	}

	member, err := s.familyRepo.GetMember(familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member != nil && member.IsActive() {
		return nil, ErrAlreadyMember
	}

	pending, err := s.requestRepo.HasPending(familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrRequestPending
	}

	request, err := s.requestRepo.Create(familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return request, nil
}

// ListPendingRequests retrieves a family's pending join requests; owner or
// admin only
func (s *FamilyService) ListPendingRequests(familyID, actorUserID int64) ([]models.JoinRequest, error) {
	if _, err := s.activeMemberWithRole(familyID, actorUserID, models.RoleAdmin); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.ListPending(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	return requests, nil
}

// ApproveJoinRequest resolves a pending request and admits the requester as
// a member, both in one transaction. Owner or admin only.
func (s *FamilyService) ApproveJoinRequest(requestID, actorUserID int64) error {
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return fmt.Errorf("failed to get join request: %w", err)
	}
	if request == nil {
		return ErrRequestNotFound
	}
	if !request.IsPending() {
		return ErrRequestAlreadyDone
	}

	if _, err := s.activeMemberWithRole(request.FamilyID, actorUserID, models.RoleAdmin); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requestRepo.Resolve(tx, requestID, models.JoinRequestApproved); err != nil {
		return fmt.Errorf("failed to approve join request: %w", err)
	}

	// A previously removed member keeps their row; reinstate it instead of
	// violating the (family, user) unique pair.
	existing, err := s.familyRepo.GetMemberForUpdate(tx, request.FamilyID, request.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		err = s.familyRepo.ReinstateMember(tx, request.FamilyID, request.UserID, models.RoleMember)
	} else {
		err = s.familyRepo.AddMember(tx, request.FamilyID, request.UserID, models.RoleMember)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit join approval: %w", err)
	}

	s.audit.Append(actorUserID, auditApproveJoin, request.UserID, string(models.CodeAllowed))
	return nil
}

// RejectJoinRequest resolves a pending request without admitting the
// requester. Owner or admin only.
func (s *FamilyService) RejectJoinRequest(requestID, actorUserID int64) error {
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return fmt.Errorf("failed to get join request: %w", err)
	}
	if request == nil {
		return ErrRequestNotFound
	}
	if !request.IsPending() {
		return ErrRequestAlreadyDone
	}

	if _, err := s.activeMemberWithRole(request.FamilyID, actorUserID, models.RoleAdmin); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requestRepo.Resolve(tx, requestID, models.JoinRequestRejected); err != nil {
		return fmt.Errorf("failed to reject join request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit join rejection: %w", err)
	}

	s.audit.Append(actorUserID, auditRejectJoin, request.UserID, string(models.CodeAllowed))
	return nil
}
