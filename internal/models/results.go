package models

import "github.com/shopspring/decimal"

// ErrorCode identifies a business outcome. These are expected results
// returned to callers, not exceptional control flow; only store-level
// faults travel as Go errors.
type ErrorCode string

const (
	// Authorization outcomes, produced by the authz engine.
	CodeAllowed                  ErrorCode = "ALLOWED"
	CodeNotAuthorizedMember      ErrorCode = "NOT_AUTHORIZED_MEMBER"
	CodeNotAuthorizedViewer      ErrorCode = "NOT_AUTHORIZED_VIEWER"
	CodeAdminCannotManageOwner   ErrorCode = "ADMIN_CANNOT_MANAGE_OWNER"
	CodeInvalidOwnershipTransfer ErrorCode = "INVALID_OWNERSHIP_TRANSFER"

	// Validation outcomes.
	CodeMemberNotFound  ErrorCode = "MEMBER_NOT_FOUND"
	CodeInvalidRole     ErrorCode = "INVALID_ROLE"
	CodeInvalidAmount   ErrorCode = "INVALID_AMOUNT"
	CodeAccountNotFound ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeGoalNotFound    ErrorCode = "GOAL_NOT_FOUND"
	CodeNotAuthorized   ErrorCode = "NOT_AUTHORIZED"

	CodeInsufficientFunds    ErrorCode = "INSUFFICIENT_FUNDS"
	CodeGoalAlreadyCompleted ErrorCode = "GOAL_ALREADY_COMPLETED"
	CodeGoalNotActive        ErrorCode = "GOAL_NOT_ACTIVE"

	// Concurrency outcome: state changed between snapshot and commit.
	// Distinct from validation errors so clients know a retry may succeed.
	CodeStaleRoleState ErrorCode = "STALE_ROLE_STATE"
)

// RoleChangeResult is the outcome of a membership command.
type RoleChangeResult struct {
	Success   bool
	ErrorCode ErrorCode
}

// ContributionResult is the outcome of a goal contribution.
type ContributionResult struct {
	Success       bool
	NewBalance    decimal.Decimal
	GoalCompleted bool
	ErrorCode     ErrorCode
}
