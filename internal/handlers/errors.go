package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"budgetme/internal/models"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// statusForCode maps a business error code to an HTTP status so clients can
// distinguish retryable conflicts from permanent denials.
func statusForCode(code models.ErrorCode) int {
	switch code {
	case models.CodeMemberNotFound, models.CodeAccountNotFound, models.CodeGoalNotFound:
		return http.StatusNotFound
	case models.CodeNotAuthorized, models.CodeNotAuthorizedMember, models.CodeNotAuthorizedViewer,
		models.CodeAdminCannotManageOwner, models.CodeInvalidOwnershipTransfer:
		return http.StatusForbidden
	case models.CodeStaleRoleState:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
