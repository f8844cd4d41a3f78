package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetme/internal/service"

	"github.com/shopspring/decimal"
)

// AccountHandler serves account CRUD endpoints
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func accountErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotAccountOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrAccountHasActivity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CreateAccount handles POST /api/accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Name           string `json:"name"`
		OpeningBalance string `json:"opening_balance"`
		Color          string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	balance := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		balance, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid opening balance", "", err)
			return
		}
	}

	account, err := h.accountService.CreateAccount(userID, req.Name, balance, req.Color)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "failed to create account", err)
		return
	}

	respondJSON(w, http.StatusCreated, newAccountView(account))
}

// ListAccounts handles GET /api/accounts
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	accounts, err := h.accountService.GetUserAccounts(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list accounts", "", err)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for i := range accounts {
		views = append(views, newAccountView(&accounts[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetAccount handles GET /api/accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	accountID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid account id", "", err)
		return
	}

	account, err := h.accountService.GetAccount(accountID, userID)
	if err != nil {
		respondWithError(w, accountErrorStatus(err), err.Error(), "failed to get account", err)
		return
	}

	respondJSON(w, http.StatusOK, newAccountView(account))
}

// UpdateAccount handles PUT /api/accounts/{id}
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	accountID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid account id", "", err)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	if err := h.accountService.UpdateAccount(accountID, userID, req.Name, req.Color); err != nil {
		respondWithError(w, accountErrorStatus(err), err.Error(), "failed to update account", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAccount handles DELETE /api/accounts/{id}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	accountID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid account id", "", err)
		return
	}

	if err := h.accountService.DeleteAccount(accountID, userID); err != nil {
		respondWithError(w, accountErrorStatus(err), err.Error(), "failed to delete account", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListTransactions handles GET /api/accounts/{id}/transactions
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	accountID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid account id", "", err)
		return
	}

	transactions, err := h.accountService.GetAccountTransactions(accountID, userID)
	if err != nil {
		respondWithError(w, accountErrorStatus(err), err.Error(), "failed to list transactions", err)
		return
	}

	respondJSON(w, http.StatusOK, newTransactionViews(transactions))
}
