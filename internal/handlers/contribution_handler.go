package handlers

import (
	"encoding/json"
	"net/http"

	"budgetme/internal/service"

	"github.com/shopspring/decimal"
)

// ContributionHandler serves the goal contribution endpoint
type ContributionHandler struct {
	contributionService *service.ContributionService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributionService *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

// Contribute handles POST /api/goals/{id}/contribute
func (h *ContributionHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	goalID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid goal id", "", err)
		return
	}

	var req struct {
		AccountID int64  `json:"account_id"`
		Amount    string `json:"amount"`
		Notes     string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	// Amounts travel as strings to keep decimals exact.
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid amount", "", err)
		return
	}

	result, err := h.contributionService.Contribute(goalID, req.AccountID, amount, userID, req.Notes)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to process contribution", "", err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = statusForCode(result.ErrorCode)
	}
	respondJSON(w, status, newContributionView(result))
}
