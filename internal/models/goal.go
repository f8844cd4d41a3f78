package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus tracks a savings goal's lifecycle.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalCancelled  GoalStatus = "cancelled"
)

// Goal is a savings target owned by a user and optionally shared with a
// family. CurrentAmount only grows while in progress; the completed status
// is set exactly when current >= target and never reverts.
type Goal struct {
	ID            int64
	UserID        int64
	FamilyID      *int64 // set when the goal is shared with a family
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Status        GoalStatus
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsShared reports whether the goal is shared with a family.
func (g *Goal) IsShared() bool {
	return g.FamilyID != nil
}

// TargetReached reports whether the current amount has met the target.
func (g *Goal) TargetReached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Progress returns completion as a percentage, capped at 100.
func (g *Goal) Progress() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	pct, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	if pct > 100 {
		return 100
	}
	return pct
}
