package service

import (
	"errors"
	"fmt"

	"budgetme/internal/models"
	"budgetme/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrNotAccountOwner    = errors.New("user does not own this account")
	ErrAccountHasActivity = errors.New("account has transactions and cannot be deleted")
)

// AccountService handles account CRUD. Balance mutation is the contribution
// coordinator's job alone; nothing here touches balances after creation.
type AccountService struct {
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo *repository.AccountRepository, transactionRepo *repository.TransactionRepository) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateAccount creates a new account with an opening balance
func (s *AccountService) CreateAccount(userID int64, name string, openingBalance decimal.Decimal, color string) (*models.Account, error) {
	if name == "" {
		return nil, errors.New("account name is required")
	}
	if openingBalance.IsNegative() {
		return nil, errors.New("opening balance cannot be negative")
	}

	account, err := s.accountRepo.CreateAccount(userID, name, openingBalance, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// GetAccount retrieves an account the user owns
func (s *AccountService) GetAccount(accountID, userID int64) (*models.Account, error) {
	account, err := s.accountRepo.GetAccountByID(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.UserID != userID {
		return nil, ErrNotAccountOwner
	}
	return account, nil
}

// GetUserAccounts retrieves all of a user's accounts
func (s *AccountService) GetUserAccounts(userID int64) ([]models.Account, error) {
	accounts, err := s.accountRepo.GetUserAccounts(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's name and color
func (s *AccountService) UpdateAccount(accountID, userID int64, name, color string) error {
	if name == "" {
		return errors.New("account name is required")
	}
	if _, err := s.GetAccount(accountID, userID); err != nil {
		return err
	}
	if err := s.accountRepo.UpdateAccount(accountID, name, color); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// DeleteAccount deletes an account, refusing while ledger records still
// reference it (the ledger is immutable, so those records cannot move)
func (s *AccountService) DeleteAccount(accountID, userID int64) error {
	if _, err := s.GetAccount(accountID, userID); err != nil {
		return err
	}

	hasActivity, err := s.transactionRepo.AccountHasTransactions(accountID)
	if err != nil {
		return fmt.Errorf("failed to check account activity: %w", err)
	}
	if hasActivity {
		return ErrAccountHasActivity
	}

	if err := s.accountRepo.DeleteAccount(accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// GetAccountTransactions retrieves an account's ledger history
func (s *AccountService) GetAccountTransactions(accountID, userID int64) ([]models.Transaction, error) {
	if _, err := s.GetAccount(accountID, userID); err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.GetAccountTransactions(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account transactions: %w", err)
	}
	return transactions, nil
}
