package repository

import (
	"database/sql"
	"fmt"

	"budgetme/internal/database"
	"budgetme/internal/models"
)

// TransactionRepository handles database operations for the transaction
// ledger. Records are append-only; there are no update or delete methods.
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert writes a new transaction record inside the given transaction and
// returns its ID
func (r *TransactionRepository) Insert(tx *database.Tx, t *models.Transaction) (int64, error) {
	query := "INSERT INTO transactions (reference, account_id, goal_id, amount, type, notes) VALUES (?, ?, ?, ?, ?, ?)"
	id, err := tx.ExecReturningID(query, t.Reference, t.AccountID, t.GoalID, t.Amount, string(t.Type), t.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction record: %w", err)
	}
	return id, nil
}

const transactionColumns = "id, reference, account_id, goal_id, amount, type, notes, created_at"

func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	var goalID sql.NullInt64
	err := row.Scan(
		&t.ID,
		&t.Reference,
		&t.AccountID,
		&goalID,
		&t.Amount,
		&t.Type,
		&t.Notes,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if goalID.Valid {
		t.GoalID = &goalID.Int64
	}
	return t, nil
}

// GetAccountTransactions retrieves an account's history, newest first
func (r *TransactionRepository) GetAccountTransactions(accountID int64) ([]models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE account_id = ? ORDER BY created_at DESC, id DESC"
	return r.queryTransactions(query, accountID)
}

// GetGoalTransactions retrieves a goal's contribution history, newest first
func (r *TransactionRepository) GetGoalTransactions(goalID int64) ([]models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE goal_id = ? ORDER BY created_at DESC, id DESC"
	return r.queryTransactions(query, goalID)
}

func (r *TransactionRepository) queryTransactions(query string, arg interface{}) ([]models.Transaction, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}

	return transactions, rows.Err()
}

// AccountHasTransactions reports whether any ledger records reference the account
func (r *TransactionRepository) AccountHasTransactions(accountID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM transactions WHERE account_id = ?"
	var count int
	if err := r.db.QueryRow(query, accountID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count account transactions: %w", err)
	}
	return count > 0, nil
}
