package service

import (
	"fmt"
	"time"

	"budgetme/internal/database"
	"budgetme/internal/models"
	"budgetme/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const auditContribute = "contribute"

// ContributionService coordinates moving funds from an account into a goal.
// The ledger insert, the account debit and the goal credit form one atomic
// unit: a contribution is never observable half-applied.
type ContributionService struct {
	db              *database.DB
	accountRepo     *repository.AccountRepository
	goalRepo        *repository.GoalRepository
	transactionRepo *repository.TransactionRepository
	familyRepo      *repository.FamilyRepository
	audit           *AuditLogger
}

// NewContributionService creates a new contribution service
func NewContributionService(
	db *database.DB,
	accountRepo *repository.AccountRepository,
	goalRepo *repository.GoalRepository,
	transactionRepo *repository.TransactionRepository,
	familyRepo *repository.FamilyRepository,
	audit *AuditLogger,
) *ContributionService {
	return &ContributionService{
		db:              db,
		accountRepo:     accountRepo,
		goalRepo:        goalRepo,
		transactionRepo: transactionRepo,
		familyRepo:      familyRepo,
		audit:           audit,
	}
}

func contributionFailure(code models.ErrorCode) models.ContributionResult {
	return models.ContributionResult{Success: false, ErrorCode: code}
}

// Contribute moves amount from the account into the goal. Balance and goal
// state are re-read under lock inside the transaction, so two concurrent
// contributions can never both spend the same funds. Store faults return as
// errors; business outcomes travel in the result's ErrorCode.
func (s *ContributionService) Contribute(goalID, accountID int64, amount decimal.Decimal, userID int64, notes string) (models.ContributionResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return contributionFailure(models.CodeInvalidAmount), nil
	}

	account, err := s.accountRepo.GetAccountByID(accountID)
	if err != nil {
		return models.ContributionResult{}, err
	}
	if account == nil {
		return contributionFailure(models.CodeAccountNotFound), nil
	}
	if account.UserID != userID {
		return contributionFailure(models.CodeNotAuthorized), nil
	}

	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return models.ContributionResult{}, err
	}
	if goal == nil {
		return contributionFailure(models.CodeGoalNotFound), nil
	}

	// Shared goals accept contributions from family members with write
	// privileges; viewers are read-only.
	if goal.UserID != userID {
		if !goal.IsShared() {
			return contributionFailure(models.CodeNotAuthorized), nil
		}
		member, err := s.familyRepo.GetMember(*goal.FamilyID, userID)
		if err != nil {
			return models.ContributionResult{}, err
		}
		if member == nil || !member.IsActive() || !member.Role.AtLeast(models.RoleMember) {
			return contributionFailure(models.CodeNotAuthorized), nil
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.ContributionResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-read inside the transaction, not from the snapshot above: two
	// contributions racing on one account must see each other's debits.
	balance, found, err := s.accountRepo.GetBalanceForUpdate(tx, accountID)
	if err != nil {
		return models.ContributionResult{}, err
	}
	if !found {
		return contributionFailure(models.CodeAccountNotFound), nil
	}

	lockedGoal, err := s.goalRepo.GetGoalForUpdate(tx, goalID)
	if err != nil {
		return models.ContributionResult{}, err
	}
	if lockedGoal == nil {
		return contributionFailure(models.CodeGoalNotFound), nil
	}
	switch lockedGoal.Status {
	case models.GoalCompleted:
		return contributionFailure(models.CodeGoalAlreadyCompleted), nil
	case models.GoalCancelled:
		return contributionFailure(models.CodeGoalNotActive), nil
	}

	if balance.LessThan(amount) {
		s.audit.Append(userID, auditContribute, goalID, string(models.CodeInsufficientFunds))
		return contributionFailure(models.CodeInsufficientFunds), nil
	}

	// Ledger record first: the debit is stored negative, referencing the goal.
	record := &models.Transaction{
		Reference: uuid.NewString(),
		AccountID: accountID,
		GoalID:    &goalID,
		Amount:    amount.Neg(),
		Type:      models.TransactionContribution,
		Notes:     notes,
	}
	if _, err := s.transactionRepo.Insert(tx, record); err != nil {
		return models.ContributionResult{}, err
	}

	newBalance := balance.Sub(amount)
	if err := s.accountRepo.UpdateBalance(tx, accountID, newBalance); err != nil {
		return models.ContributionResult{}, err
	}

	newCurrent := lockedGoal.CurrentAmount.Add(amount)
	status := lockedGoal.Status
	completedAt := lockedGoal.CompletedAt
	goalCompleted := false
	if newCurrent.GreaterThanOrEqual(lockedGoal.TargetAmount) {
		// One-way transition: completed goals never revert.
		status = models.GoalCompleted
		now := time.Now().UTC()
		completedAt = &now
		goalCompleted = true
	}
	if err := s.goalRepo.UpdateProgress(tx, goalID, newCurrent, status, completedAt); err != nil {
		return models.ContributionResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ContributionResult{}, fmt.Errorf("failed to commit contribution: %w", err)
	}

	s.audit.Append(userID, auditContribute, goalID, string(models.CodeAllowed))
	return models.ContributionResult{
		Success:       true,
		NewBalance:    newBalance,
		GoalCompleted: goalCompleted,
	}, nil
}
