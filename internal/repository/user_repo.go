package repository

import (
	"database/sql"
	"fmt"
	"time"

	"budgetme/internal/database"
	"budgetme/internal/models"
)

// UserRepository handles database operations for users. Identity lives in
// the external provider; these rows only mirror the subject for joins.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user row
func (r *UserRepository) CreateUser(email, name string) (*models.User, error) {
	query := "INSERT INTO users (email, name) VALUES (?, ?)"
	id, err := r.db.ExecReturningID(query, email, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetUserByID retrieves a user by ID, or nil when it does not exist
func (r *UserRepository) GetUserByID(userID int64) (*models.User, error) {
	query := "SELECT id, email, name, created_at, updated_at FROM users WHERE id = ?"
	user := &models.User{}
	err := r.db.QueryRow(query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email, or nil when it does not exist
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT id, email, name, created_at, updated_at FROM users WHERE email = ?"
	user := &models.User{}
	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
