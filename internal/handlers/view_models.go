package handlers

import (
	"time"

	"budgetme/internal/models"
)

// Money travels as exact decimal strings in the API, never floats.

type familyView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	CreatedAt  string `json:"created_at"`
}

func newFamilyView(f *models.Family) familyView {
	return familyView{
		ID:         f.ID,
		Name:       f.Name,
		Visibility: string(f.Visibility),
		CreatedAt:  f.CreatedAt.Format(time.RFC3339),
	}
}

type memberView struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

type accountView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Color   string `json:"color"`
}

func newAccountView(a *models.Account) accountView {
	return accountView{
		ID:      a.ID,
		Name:    a.Name,
		Balance: a.Balance.String(),
		Color:   a.Color,
	}
}

type goalView struct {
	ID            int64   `json:"id"`
	FamilyID      *int64  `json:"family_id,omitempty"`
	Name          string  `json:"name"`
	TargetAmount  string  `json:"target_amount"`
	CurrentAmount string  `json:"current_amount"`
	Status        string  `json:"status"`
	Progress      float64 `json:"progress"`
}

func newGoalView(g *models.Goal) goalView {
	return goalView{
		ID:            g.ID,
		FamilyID:      g.FamilyID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		Status:        string(g.Status),
		Progress:      g.Progress(),
	}
}

type transactionView struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	AccountID int64  `json:"account_id"`
	GoalID    *int64 `json:"goal_id,omitempty"`
	Amount    string `json:"amount"`
	Type      string `json:"type"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

func newTransactionView(t *models.Transaction) transactionView {
	return transactionView{
		ID:        t.ID,
		Reference: t.Reference,
		AccountID: t.AccountID,
		GoalID:    t.GoalID,
		Amount:    t.Amount.String(),
		Type:      string(t.Type),
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func newTransactionViews(transactions []models.Transaction) []transactionView {
	views := make([]transactionView, 0, len(transactions))
	for i := range transactions {
		views = append(views, newTransactionView(&transactions[i]))
	}
	return views
}

type joinRequestView struct {
	ID        int64  `json:"id"`
	FamilyID  int64  `json:"family_id"`
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func newJoinRequestView(r *models.JoinRequest) joinRequestView {
	return joinRequestView{
		ID:        r.ID,
		FamilyID:  r.FamilyID,
		UserID:    r.UserID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

type roleChangeView struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
}

func newRoleChangeView(result models.RoleChangeResult) roleChangeView {
	return roleChangeView{
		Success:   result.Success,
		ErrorCode: string(result.ErrorCode),
	}
}

type contributionView struct {
	Success       bool   `json:"success"`
	NewBalance    string `json:"new_balance,omitempty"`
	GoalCompleted bool   `json:"goal_completed"`
	ErrorCode     string `json:"error_code,omitempty"`
}

func newContributionView(result models.ContributionResult) contributionView {
	view := contributionView{
		Success:       result.Success,
		GoalCompleted: result.GoalCompleted,
		ErrorCode:     string(result.ErrorCode),
	}
	if result.Success {
		view.NewBalance = result.NewBalance.String()
	}
	return view
}
