package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user-owned pot of money. Balance arithmetic is exact
// fixed-point; a contribution debit must never drive the balance negative.
type Account struct {
	ID        int64
	UserID    int64
	Name      string
	Balance   decimal.Decimal
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanCover reports whether the balance is sufficient for a debit of amount.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
