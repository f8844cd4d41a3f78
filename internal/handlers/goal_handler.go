package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetme/internal/service"

	"github.com/shopspring/decimal"
)

// GoalHandler serves goal CRUD endpoints
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func goalErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotGoalOwner), errors.Is(err, service.ErrNotFamilyMember):
		return http.StatusForbidden
	case errors.Is(err, service.ErrGoalNotCancelable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CreateGoal handles POST /api/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Name         string `json:"name"`
		TargetAmount string `json:"target_amount"`
		FamilyID     *int64 `json:"family_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid target amount", "", err)
		return
	}

	goal, err := h.goalService.CreateGoal(userID, req.FamilyID, req.Name, target)
	if err != nil {
		respondWithError(w, goalErrorStatus(err), err.Error(), "failed to create goal", err)
		return
	}

	respondJSON(w, http.StatusCreated, newGoalView(goal))
}

// ListGoals handles GET /api/goals
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	goals, err := h.goalService.GetUserGoals(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list goals", "", err)
		return
	}

	views := make([]goalView, 0, len(goals))
	for i := range goals {
		views = append(views, newGoalView(&goals[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// ListFamilyGoals handles GET /api/families/{id}/goals
func (h *GoalHandler) ListFamilyGoals(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	familyID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", err)
		return
	}

	goals, err := h.goalService.GetFamilyGoals(familyID, userID)
	if err != nil {
		respondWithError(w, goalErrorStatus(err), err.Error(), "failed to list family goals", err)
		return
	}

	views := make([]goalView, 0, len(goals))
	for i := range goals {
		views = append(views, newGoalView(&goals[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetGoal handles GET /api/goals/{id}
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	goalID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid goal id", "", err)
		return
	}

	goal, err := h.goalService.GetGoal(goalID, userID)
	if err != nil {
		respondWithError(w, goalErrorStatus(err), err.Error(), "failed to get goal", err)
		return
	}

	respondJSON(w, http.StatusOK, newGoalView(goal))
}

// CancelGoal handles POST /api/goals/{id}/cancel
func (h *GoalHandler) CancelGoal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	goalID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid goal id", "", err)
		return
	}

	if err := h.goalService.CancelGoal(goalID, userID); err != nil {
		respondWithError(w, goalErrorStatus(err), err.Error(), "failed to cancel goal", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListTransactions handles GET /api/goals/{id}/transactions
func (h *GoalHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	goalID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid goal id", "", err)
		return
	}

	transactions, err := h.goalService.GetGoalTransactions(goalID, userID)
	if err != nil {
		respondWithError(w, goalErrorStatus(err), err.Error(), "failed to list goal transactions", err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionViews(transactions))
}
