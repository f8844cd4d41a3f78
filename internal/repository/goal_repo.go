package repository

import (
	"database/sql"
	"fmt"
	"time"

	"budgetme/internal/database"
	"budgetme/internal/models"

	"github.com/shopspring/decimal"
)

// GoalRepository handles database operations for savings goals
type GoalRepository struct {
	db *database.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// CreateGoal creates a new goal, optionally shared with a family
func (r *GoalRepository) CreateGoal(userID int64, familyID *int64, name string, target decimal.Decimal) (*models.Goal, error) {
	query := "INSERT INTO goals (user_id, family_id, name, target_amount, current_amount, status) VALUES (?, ?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, userID, familyID, name, target, decimal.Zero, string(models.GoalInProgress))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return &models.Goal{
		ID:            id,
		UserID:        userID,
		FamilyID:      familyID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Status:        models.GoalInProgress,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

const goalColumns = "id, user_id, family_id, name, target_amount, current_amount, status, completed_at, created_at, updated_at"

func scanGoal(row interface{ Scan(...interface{}) error }) (*models.Goal, error) {
	goal := &models.Goal{}
	var familyID sql.NullInt64
	var completedAt sql.NullTime
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&familyID,
		&goal.Name,
		&goal.TargetAmount,
		&goal.CurrentAmount,
		&goal.Status,
		&completedAt,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		goal.FamilyID = &familyID.Int64
	}
	if completedAt.Valid {
		goal.CompletedAt = &completedAt.Time
	}
	return goal, nil
}

// GetGoalByID retrieves a goal by ID, or nil when it does not exist
func (r *GoalRepository) GetGoalByID(goalID int64) (*models.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE id = ?"
	goal, err := scanGoal(r.db.QueryRow(query, goalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// GetGoalForUpdate re-reads a goal inside the given transaction, locking the
// row where the dialect supports it. Returns nil when the goal is gone.
func (r *GoalRepository) GetGoalForUpdate(tx *database.Tx, goalID int64) (*models.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE id = ?" + tx.GetDialect().RowLockClause()
	goal, err := scanGoal(tx.QueryRow(query, goalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock goal: %w", err)
	}
	return goal, nil
}

// GetUserGoals retrieves all goals owned by a user
func (r *GoalRepository) GetUserGoals(userID int64) ([]models.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE user_id = ? ORDER BY created_at DESC"
	return r.queryGoals(query, userID)
}

// GetFamilyGoals retrieves all goals shared with a family
func (r *GoalRepository) GetFamilyGoals(familyID int64) ([]models.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals WHERE family_id = ? ORDER BY created_at DESC"
	return r.queryGoals(query, familyID)
}

func (r *GoalRepository) queryGoals(query string, arg interface{}) ([]models.Goal, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}

	return goals, rows.Err()
}

// UpdateProgress writes a goal's new current amount and, when the target has
// been reached, the one-way flip to completed. Runs inside the transaction.
func (r *GoalRepository) UpdateProgress(tx *database.Tx, goalID int64, current decimal.Decimal, status models.GoalStatus, completedAt *time.Time) error {
	query := "UPDATE goals SET current_amount = ?, status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := tx.Exec(query, current, string(status), completedAt, goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	return nil
}

// CancelGoal marks an in-progress goal as cancelled. The transition is
// one-way; completed goals are left untouched.
func (r *GoalRepository) CancelGoal(goalID int64) error {
	query := "UPDATE goals SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?"
	result, err := r.db.Exec(query, string(models.GoalCancelled), goalID, string(models.GoalInProgress))
	if err != nil {
		return fmt.Errorf("failed to cancel goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check goal cancellation: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
