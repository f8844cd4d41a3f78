package handlers

import (
	"encoding/json"
	"net/http"

	"budgetme/internal/models"
	"budgetme/internal/service"
)

// MembershipHandler serves the role-management endpoints
type MembershipHandler struct {
	membershipService *service.MembershipService
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

func respondRoleChange(w http.ResponseWriter, result models.RoleChangeResult) {
	status := http.StatusOK
	if !result.Success {
		status = statusForCode(result.ErrorCode)
	}
	respondJSON(w, status, newRoleChangeView(result))
}

// ChangeRole handles POST /api/families/{id}/members/{userId}/role
func (h *MembershipHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actorUserID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}
	targetUserID, err := pathID(r, "userId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id", "", err)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	result, err := h.membershipService.ChangeRole(familyID, actorUserID, targetUserID, models.Role(req.Role))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to change role", "", err)
		return
	}

	respondRoleChange(w, result)
}

// RemoveMember handles DELETE /api/families/{id}/members/{userId}
func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorUserID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}
	targetUserID, err := pathID(r, "userId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id", "", err)
		return
	}

	result, err := h.membershipService.RemoveMember(familyID, actorUserID, targetUserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to remove member", "", err)
		return
	}

	respondRoleChange(w, result)
}

// TransferOwnership handles POST /api/families/{id}/transfer-ownership
func (h *MembershipHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	actorUserID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	var req struct {
		NewOwnerUserID int64 `json:"new_owner_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	result, err := h.membershipService.TransferOwnership(familyID, actorUserID, req.NewOwnerUserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to transfer ownership", "", err)
		return
	}

	respondRoleChange(w, result)
}
