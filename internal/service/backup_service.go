package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"budgetme/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Users        []UserBackup        `json:"users"`
	Families     []FamilyBackup      `json:"families"`
	Accounts     []AccountBackup     `json:"accounts"`
	Goals        []GoalBackup        `json:"goals"`
	Transactions []TransactionBackup `json:"transactions"`
	JoinRequests []JoinRequestBackup `json:"join_requests"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FamilyBackup represents a family record with its members
type FamilyBackup struct {
	ID         int64                `json:"id"`
	Name       string               `json:"name"`
	Visibility string               `json:"visibility"`
	Members    []FamilyMemberBackup `json:"members"`
}

// FamilyMemberBackup represents a family member record
type FamilyMemberBackup struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// AccountBackup represents an account record for backup
type AccountBackup struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Color   string `json:"color"`
}

// GoalBackup represents a goal record for backup
type GoalBackup struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	FamilyID      *int64 `json:"family_id,omitempty"`
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Status        string `json:"status"`
}

// TransactionBackup represents a ledger record for backup
type TransactionBackup struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	AccountID int64  `json:"account_id"`
	GoalID    *int64 `json:"goal_id,omitempty"`
	Amount    string `json:"amount"`
	Type      string `json:"type"`
	Notes     string `json:"notes"`
}

// JoinRequestBackup represents a join request record for backup
type JoinRequestBackup struct {
	ID       int64  `json:"id"`
	FamilyID int64  `json:"family_id"`
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
}

// BackupService exports and imports the full entity set as JSON
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes all entities to the given writer as JSON
func (s *BackupService) Export(w io.Writer) error {
	backup := BackupData{
		Version:    "1",
		ExportedAt: time.Now().UTC(),
	}

	if err := s.exportUsers(&backup); err != nil {
		return err
	}
	if err := s.exportFamilies(&backup); err != nil {
		return err
	}
	if err := s.exportAccounts(&backup); err != nil {
		return err
	}
	if err := s.exportGoals(&backup); err != nil {
		return err
	}
	if err := s.exportTransactions(&backup); err != nil {
		return err
	}
	if err := s.exportJoinRequests(&backup); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

// ExportToFile writes a backup to the named file
func (s *BackupService) ExportToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := s.Export(f); err != nil {
		return fmt.Errorf("failed to export backup: %w", err)
	}
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, email, name FROM users ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return fmt.Errorf("failed to scan user: %w", err)
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, visibility FROM families ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.Visibility); err != nil {
			return fmt.Errorf("failed to scan family: %w", err)
		}
		backup.Families = append(backup.Families, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Families {
		memberRows, err := s.db.Query(
			"SELECT user_id, role, status FROM family_members WHERE family_id = ? ORDER BY id",
			backup.Families[i].ID,
		)
		if err != nil {
			return fmt.Errorf("failed to export family members: %w", err)
		}
		for memberRows.Next() {
			var m FamilyMemberBackup
			if err := memberRows.Scan(&m.UserID, &m.Role, &m.Status); err != nil {
				memberRows.Close()
				return fmt.Errorf("failed to scan family member: %w", err)
			}
			backup.Families[i].Members = append(backup.Families[i].Members, m)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return err
		}
		memberRows.Close()
	}
	return nil
}

func (s *BackupService) exportAccounts(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, user_id, name, balance, color FROM accounts ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a AccountBackup
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Balance, &a.Color); err != nil {
			return fmt.Errorf("failed to scan account: %w", err)
		}
		backup.Accounts = append(backup.Accounts, a)
	}
	return rows.Err()
}

func (s *BackupService) exportGoals(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, user_id, family_id, name, target_amount, current_amount, status FROM goals ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export goals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g GoalBackup
		var familyID sql.NullInt64
		if err := rows.Scan(&g.ID, &g.UserID, &familyID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Status); err != nil {
			return fmt.Errorf("failed to scan goal: %w", err)
		}
		if familyID.Valid {
			g.FamilyID = &familyID.Int64
		}
		backup.Goals = append(backup.Goals, g)
	}
	return rows.Err()
}

func (s *BackupService) exportTransactions(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, reference, account_id, goal_id, amount, type, notes FROM transactions ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t TransactionBackup
		var goalID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Reference, &t.AccountID, &goalID, &t.Amount, &t.Type, &t.Notes); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		if goalID.Valid {
			t.GoalID = &goalID.Int64
		}
		backup.Transactions = append(backup.Transactions, t)
	}
	return rows.Err()
}

func (s *BackupService) exportJoinRequests(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, user_id, status FROM join_requests ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to export join requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r JoinRequestBackup
		if err := rows.Scan(&r.ID, &r.FamilyID, &r.UserID, &r.Status); err != nil {
			return fmt.Errorf("failed to scan join request: %w", err)
		}
		backup.JoinRequests = append(backup.JoinRequests, r)
	}
	return rows.Err()
}

// ImportFromFile restores a backup from the named file. When clear is set,
// existing data is removed first.
func (s *BackupService) ImportFromFile(path string, clear bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	var backup BackupData
	if err := json.NewDecoder(f).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if clear {
		// Child tables first so foreign keys hold.
		for _, table := range []string{"audit_log", "transactions", "join_requests", "goals", "accounts", "family_members", "families", "users"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	for _, u := range backup.Users {
		if _, err := tx.Exec("INSERT INTO users (id, email, name) VALUES (?, ?, ?)", u.ID, u.Email, u.Name); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	for _, f := range backup.Families {
		if _, err := tx.Exec("INSERT INTO families (id, name, visibility) VALUES (?, ?, ?)", f.ID, f.Name, f.Visibility); err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
		for _, m := range f.Members {
			if _, err := tx.Exec("INSERT INTO family_members (family_id, user_id, role, status) VALUES (?, ?, ?, ?)", f.ID, m.UserID, m.Role, m.Status); err != nil {
				return fmt.Errorf("failed to import member of family %d: %w", f.ID, err)
			}
		}
	}
	for _, a := range backup.Accounts {
		if _, err := tx.Exec("INSERT INTO accounts (id, user_id, name, balance, color) VALUES (?, ?, ?, ?, ?)", a.ID, a.UserID, a.Name, a.Balance, a.Color); err != nil {
			return fmt.Errorf("failed to import account %d: %w", a.ID, err)
		}
	}
	for _, g := range backup.Goals {
		if _, err := tx.Exec("INSERT INTO goals (id, user_id, family_id, name, target_amount, current_amount, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
			g.ID, g.UserID, g.FamilyID, g.Name, g.TargetAmount, g.CurrentAmount, g.Status); err != nil {
			return fmt.Errorf("failed to import goal %d: %w", g.ID, err)
		}
	}
	for _, t := range backup.Transactions {
		if _, err := tx.Exec("INSERT INTO transactions (id, reference, account_id, goal_id, amount, type, notes) VALUES (?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.Reference, t.AccountID, t.GoalID, t.Amount, t.Type, t.Notes); err != nil {
			return fmt.Errorf("failed to import transaction %d: %w", t.ID, err)
		}
	}
	for _, r := range backup.JoinRequests {
		if _, err := tx.Exec("INSERT INTO join_requests (id, family_id, user_id, status) VALUES (?, ?, ?, ?)", r.ID, r.FamilyID, r.UserID, r.Status); err != nil {
			return fmt.Errorf("failed to import join request %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}

	log.Printf("Imported %d users, %d families, %d accounts, %d goals, %d transactions",
		len(backup.Users), len(backup.Families), len(backup.Accounts), len(backup.Goals), len(backup.Transactions))
	return nil
}
