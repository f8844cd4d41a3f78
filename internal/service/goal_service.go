package service

import (
	"database/sql"
	"errors"
	"fmt"

	"budgetme/internal/models"
	"budgetme/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrNotGoalOwner      = errors.New("user does not own this goal")
	ErrGoalNotCancelable = errors.New("goal is not in progress")
)

// GoalService handles goal CRUD. Progress mutation is the contribution
// coordinator's job alone; the only state change here is cancellation.
type GoalService struct {
	goalRepo        *repository.GoalRepository
	familyRepo      *repository.FamilyRepository
	transactionRepo *repository.TransactionRepository
}

// NewGoalService creates a new goal service
func NewGoalService(goalRepo *repository.GoalRepository, familyRepo *repository.FamilyRepository, transactionRepo *repository.TransactionRepository) *GoalService {
	return &GoalService{
		goalRepo:        goalRepo,
		familyRepo:      familyRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateGoal creates a savings goal, optionally shared with a family the
// user actively belongs to
func (s *GoalService) CreateGoal(userID int64, familyID *int64, name string, target decimal.Decimal) (*models.Goal, error) {
	if name == "" {
		return nil, errors.New("goal name is required")
	}
	if target.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("goal target must be positive")
	}

	if familyID != nil {
		member, err := s.familyRepo.GetMember(*familyID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if member == nil || !member.IsActive() {
			return nil, ErrNotFamilyMember
		}
	}

	goal, err := s.goalRepo.CreateGoal(userID, familyID, name, target)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return goal, nil
}

// GetGoal retrieves a goal readable by the user: their own, or one shared
// with a family they belong to
func (s *GoalService) GetGoal(goalID, userID int64) (*models.Goal, error) {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if goal.UserID != userID {
		if !goal.IsShared() {
			return nil, ErrNotGoalOwner
		}
		member, err := s.familyRepo.GetMember(*goal.FamilyID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if member == nil || !member.IsActive() {
			return nil, ErrNotGoalOwner
		}
	}
	return goal, nil
}

// GetUserGoals retrieves all goals owned by a user
func (s *GoalService) GetUserGoals(userID int64) ([]models.Goal, error) {
	goals, err := s.goalRepo.GetUserGoals(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	return goals, nil
}

// GetFamilyGoals retrieves all goals shared with a family the user belongs to
func (s *GoalService) GetFamilyGoals(familyID, userID int64) ([]models.Goal, error) {
	member, err := s.familyRepo.GetMember(familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member == nil || !member.IsActive() {
		return nil, ErrNotFamilyMember
	}

	goals, err := s.goalRepo.GetFamilyGoals(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family goals: %w", err)
	}
	return goals, nil
}

// CancelGoal marks an in-progress goal cancelled; the goal's owner only.
// Completed goals stay completed.
func (s *GoalService) CancelGoal(goalID, userID int64) error {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return fmt.Errorf("failed to get goal: %w", err)
	}
	if goal == nil {
		return ErrGoalNotFound
	}
	if goal.UserID != userID {
		return ErrNotGoalOwner
	}

	if err := s.goalRepo.CancelGoal(goalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGoalNotCancelable
		}
		return fmt.Errorf("failed to cancel goal: %w", err)
	}
	return nil
}

// GetGoalTransactions retrieves a goal's contribution history
func (s *GoalService) GetGoalTransactions(goalID, userID int64) ([]models.Transaction, error) {
	if _, err := s.GetGoal(goalID, userID); err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.GetGoalTransactions(goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal transactions: %w", err)
	}
	return transactions, nil
}
