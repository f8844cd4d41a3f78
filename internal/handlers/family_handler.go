package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"budgetme/internal/models"
	"budgetme/internal/service"
)

// FamilyHandler serves family lifecycle and join request endpoints
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// familyErrorStatus maps family service sentinel errors to HTTP statuses
func familyErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrFamilyNotFound), errors.Is(err, service.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotFamilyMember), errors.Is(err, service.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, service.ErrFamilyPrivate), errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrRequestPending), errors.Is(err, service.ErrRequestAlreadyDone):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CreateFamily handles POST /api/families
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Name       string `json:"name"`
		Visibility string `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	family, err := h.familyService.CreateFamily(req.Name, models.Visibility(req.Visibility), userID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "failed to create family", err)
		return
	}

	respondJSON(w, http.StatusCreated, newFamilyView(family))
}

// ListFamilies handles GET /api/families
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	families, err := h.familyService.GetUserFamilies(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list families", "", err)
		return
	}

	views := make([]familyView, 0, len(families))
	for i := range families {
		views = append(views, newFamilyView(&families[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetFamily handles GET /api/families/{id}
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	if err := h.familyService.VerifyFamilyAccess(userID, familyID); err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "family access denied", err)
		return
	}

	family, err := h.familyService.GetFamily(familyID)
	if err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to get family", err)
		return
	}

	respondJSON(w, http.StatusOK, newFamilyView(family))
}

// UpdateFamily handles PUT /api/families/{id}
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	var req struct {
		Name       string `json:"name"`
		Visibility string `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	if err := h.familyService.UpdateFamily(familyID, userID, req.Name, models.Visibility(req.Visibility)); err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to update family", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteFamily handles DELETE /api/families/{id}
func (h *FamilyHandler) DeleteFamily(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	if err := h.familyService.DeleteFamily(familyID, userID); err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to delete family", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListMembers handles GET /api/families/{id}/members
func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	members, users, err := h.familyService.ListMembers(familyID, userID)
	if err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to list members", err)
		return
	}

	views := make([]memberView, 0, len(members))
	for i := range members {
		views = append(views, memberView{
			UserID:   members[i].UserID,
			Email:    users[i].Email,
			Name:     users[i].Name,
			Role:     string(members[i].Role),
			JoinedAt: members[i].JoinedAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// RequestToJoin handles POST /api/families/{id}/join-requests
func (h *FamilyHandler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	request, err := h.familyService.RequestToJoin(familyID, userID)
	if err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to create join request", err)
		return
	}

	respondJSON(w, http.StatusCreated, newJoinRequestView(request))
}

// ListJoinRequests handles GET /api/families/{id}/join-requests
func (h *FamilyHandler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	requests, err := h.familyService.ListPendingRequests(familyID, userID)
	if err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to list join requests", err)
		return
	}

	views := make([]joinRequestView, 0, len(requests))
	for i := range requests {
		views = append(views, newJoinRequestView(&requests[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// ApproveJoinRequest handles POST /api/join-requests/{id}/approve
func (h *FamilyHandler) ApproveJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	requestID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request id", "", err)
		return
	}

	if err := h.familyService.ApproveJoinRequest(requestID, userID); err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to approve join request", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RejectJoinRequest handles POST /api/join-requests/{id}/reject
func (h *FamilyHandler) RejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	requestID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request id", "", err)
		return
	}

	if err := h.familyService.RejectJoinRequest(requestID, userID); err != nil {
		respondWithError(w, familyErrorStatus(err), err.Error(), "failed to reject join request", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
