package repository

import (
	"database/sql"
	"fmt"
	"time"

	"budgetme/internal/database"
	"budgetme/internal/models"

	"github.com/shopspring/decimal"
)

// AccountRepository handles database operations for accounts
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateAccount creates a new account for a user
func (r *AccountRepository) CreateAccount(userID int64, name string, balance decimal.Decimal, color string) (*models.Account, error) {
	query := "INSERT INTO accounts (user_id, name, balance, color) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, userID, name, balance, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &models.Account{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Balance:   balance,
		Color:     color,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetAccountByID retrieves an account by ID, or nil when it does not exist
func (r *AccountRepository) GetAccountByID(accountID int64) (*models.Account, error) {
	query := "SELECT id, user_id, name, balance, color, created_at, updated_at FROM accounts WHERE id = ?"
	account := &models.Account{}
	err := r.db.QueryRow(query, accountID).Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Balance,
		&account.Color,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetUserAccounts retrieves all accounts owned by a user
func (r *AccountRepository) GetUserAccounts(userID int64) ([]models.Account, error) {
	query := "SELECT id, user_id, name, balance, color, created_at, updated_at FROM accounts WHERE user_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.Name, &account.Balance,
			&account.Color, &account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetBalanceForUpdate re-reads an account's balance inside the given
// transaction, locking the row where the dialect supports it. The re-read
// is what prevents two contributions from both spending the same funds.
// A missing row reports found=false rather than an error, since the account
// may have been deleted between the caller's snapshot and this locked read.
func (r *AccountRepository) GetBalanceForUpdate(tx *database.Tx, accountID int64) (decimal.Decimal, bool, error) {
	query := "SELECT balance FROM accounts WHERE id = ?" + tx.GetDialect().RowLockClause()
	var balance decimal.Decimal
	err := tx.QueryRow(query, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read account balance: %w", err)
	}
	return balance, true, nil
}

// UpdateBalance writes an account's new balance inside the given transaction
func (r *AccountRepository) UpdateBalance(tx *database.Tx, accountID int64, balance decimal.Decimal) error {
	query := "UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := tx.Exec(query, balance, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	return nil
}

// UpdateAccount updates an account's name and color
func (r *AccountRepository) UpdateAccount(accountID int64, name, color string) error {
	query := "UPDATE accounts SET name = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, name, color, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// DeleteAccount deletes an account
func (r *AccountRepository) DeleteAccount(accountID int64) error {
	query := "DELETE FROM accounts WHERE id = ?"
	_, err := r.db.Exec(query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
