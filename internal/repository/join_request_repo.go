package repository

import (
	"database/sql"
	"fmt"
	"time"

	"budgetme/internal/database"
	"budgetme/internal/models"
)

// JoinRequestRepository handles database operations for join requests
type JoinRequestRepository struct {
	db *database.DB
}

// NewJoinRequestRepository creates a new join request repository
func NewJoinRequestRepository(db *database.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create inserts a new pending join request
func (r *JoinRequestRepository) Create(familyID, userID int64) (*models.JoinRequest, error) {
	query := "INSERT INTO join_requests (family_id, user_id, status) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, familyID, userID, string(models.JoinRequestPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	return &models.JoinRequest{
		ID:        id,
		FamilyID:  familyID,
		UserID:    userID,
		Status:    models.JoinRequestPending,
		CreatedAt: time.Now(),
	}, nil
}

// GetByID retrieves a join request, or nil when it does not exist
func (r *JoinRequestRepository) GetByID(requestID int64) (*models.JoinRequest, error) {
	query := "SELECT id, family_id, user_id, status, created_at, processed_at FROM join_requests WHERE id = ?"
	req := &models.JoinRequest{}
	var processedAt sql.NullTime
	err := r.db.QueryRow(query, requestID).Scan(
		&req.ID,
		&req.FamilyID,
		&req.UserID,
		&req.Status,
		&req.CreatedAt,
		&processedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}

	return req, nil
}

// HasPending reports whether a user already has a pending request for a family
func (r *JoinRequestRepository) HasPending(familyID, userID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM join_requests WHERE family_id = ? AND user_id = ? AND status = 'pending'"
	var count int
	if err := r.db.QueryRow(query, familyID, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check pending join request: %w", err)
	}
	return count > 0, nil
}

// ListPending retrieves all pending requests for a family, oldest first
func (r *JoinRequestRepository) ListPending(familyID int64) ([]models.JoinRequest, error) {
	query := `
		SELECT id, family_id, user_id, status, created_at, processed_at
		FROM join_requests
		WHERE family_id = ? AND status = 'pending'
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %w", err)
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var req models.JoinRequest
		var processedAt sql.NullTime
		if err := rows.Scan(&req.ID, &req.FamilyID, &req.UserID, &req.Status, &req.CreatedAt, &processedAt); err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		if processedAt.Valid {
			req.ProcessedAt = &processedAt.Time
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// Resolve stamps a pending request approved or rejected inside the given
// transaction. Resolving an already processed request affects no rows.
func (r *JoinRequestRepository) Resolve(tx *database.Tx, requestID int64, status models.JoinRequestStatus) error {
	query := "UPDATE join_requests SET status = ?, processed_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'pending'"
	result, err := tx.Exec(query, string(status), requestID)
	if err != nil {
		return fmt.Errorf("failed to resolve join request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check join request resolution: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
