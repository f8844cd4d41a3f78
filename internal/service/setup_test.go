package service

import (
	"os"
	"path/filepath"
	"testing"

	"budgetme/internal/database"
	"budgetme/internal/models"
	"budgetme/internal/repository"

	"github.com/shopspring/decimal"
)

// testEnv wires the services against a throwaway SQLite database so the
// transactional behavior under test runs against a real store.
type testEnv struct {
	db              *database.DB
	familyRepo      *repository.FamilyRepository
	accountRepo     *repository.AccountRepository
	goalRepo        *repository.GoalRepository
	transactionRepo *repository.TransactionRepository
	auditRepo       *repository.AuditRepository
	userRepo        *repository.UserRepository

	membership   *MembershipService
	contribution *ContributionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "sqlite", "001_initial_schema.sql"))
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	env := &testEnv{
		db:              db,
		familyRepo:      repository.NewFamilyRepository(db),
		accountRepo:     repository.NewAccountRepository(db),
		goalRepo:        repository.NewGoalRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		auditRepo:       repository.NewAuditRepository(db),
		userRepo:        repository.NewUserRepository(db),
	}

	audit := NewAuditLogger(env.auditRepo)
	env.membership = NewMembershipService(db, env.familyRepo, audit)
	env.contribution = NewContributionService(db, env.accountRepo, env.goalRepo, env.transactionRepo, env.familyRepo, audit)

	return env
}

func (e *testEnv) createUser(t *testing.T, email string) int64 {
	t.Helper()
	user, err := e.userRepo.CreateUser(email, email)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user.ID
}

func (e *testEnv) createFamily(t *testing.T, ownerUserID int64) int64 {
	t.Helper()
	family, err := e.familyRepo.CreateFamily("Test Family", models.VisibilityPrivate, ownerUserID)
	if err != nil {
		t.Fatalf("Failed to create family: %v", err)
	}
	return family.ID
}

func (e *testEnv) addMember(t *testing.T, familyID, userID int64, role models.Role) {
	t.Helper()
	query := "INSERT INTO family_members (family_id, user_id, role, status) VALUES (?, ?, ?, ?)"
	if _, err := e.db.Exec(query, familyID, userID, string(role), string(models.StatusActive)); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
}

func (e *testEnv) member(t *testing.T, familyID, userID int64) *models.FamilyMember {
	t.Helper()
	member, err := e.familyRepo.GetMember(familyID, userID)
	if err != nil {
		t.Fatalf("Failed to get member: %v", err)
	}
	if member == nil {
		t.Fatalf("Member %d not found in family %d", userID, familyID)
	}
	return member
}

func (e *testEnv) createAccount(t *testing.T, userID int64, balance string) int64 {
	t.Helper()
	account, err := e.accountRepo.CreateAccount(userID, "Checking", decimal.RequireFromString(balance), "")
	if err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
	return account.ID
}

func (e *testEnv) createGoal(t *testing.T, userID int64, familyID *int64, target string) int64 {
	t.Helper()
	goal, err := e.goalRepo.CreateGoal(userID, familyID, "Vacation", decimal.RequireFromString(target))
	if err != nil {
		t.Fatalf("Failed to create goal: %v", err)
	}
	return goal.ID
}

func (e *testEnv) accountBalance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()
	account, err := e.accountRepo.GetAccountByID(accountID)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if account == nil {
		t.Fatalf("Account %d not found", accountID)
	}
	return account.Balance
}

func (e *testEnv) goal(t *testing.T, goalID int64) *models.Goal {
	t.Helper()
	goal, err := e.goalRepo.GetGoalByID(goalID)
	if err != nil {
		t.Fatalf("Failed to get goal: %v", err)
	}
	if goal == nil {
		t.Fatalf("Goal %d not found", goalID)
	}
	return goal
}

func (e *testEnv) assertOwnerCount(t *testing.T, familyID int64, want int) {
	t.Helper()
	count, err := e.familyRepo.CountActiveOwners(familyID)
	if err != nil {
		t.Fatalf("Failed to count owners: %v", err)
	}
	if count != want {
		t.Errorf("Active owner count = %d, want %d", count, want)
	}
}
