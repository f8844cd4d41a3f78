package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction record.
type TransactionType string

const (
	TransactionIncome       TransactionType = "income"
	TransactionExpense      TransactionType = "expense"
	TransactionTransfer     TransactionType = "transfer"
	TransactionContribution TransactionType = "contribution"
)

// Transaction is an immutable ledger record. Rows are never updated after
// insert; corrections are new offsetting records. Contribution records
// store the account debit as a negative amount and reference the goal.
type Transaction struct {
	ID        int64
	Reference string // UUID assigned at insert
	AccountID int64
	GoalID    *int64
	Amount    decimal.Decimal
	Type      TransactionType
	Notes     string
	CreatedAt time.Time
}
