package repository

import (
	"fmt"
	"time"

	"budgetme/internal/database"
)

// AuditRecord is one row of the append-only activity log
type AuditRecord struct {
	ID        int64
	ActorID   int64
	Action    string
	TargetID  int64
	Outcome   string
	CreatedAt time.Time
}

// AuditRepository appends to the immutable audit log
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one activity record
func (r *AuditRepository) Append(actorID int64, action string, targetID int64, outcome string) error {
	query := "INSERT INTO audit_log (actor_id, action, target_id, outcome) VALUES (?, ?, ?, ?)"
	_, err := r.db.Exec(query, actorID, action, targetID, outcome)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// ListByActor retrieves an actor's activity, newest first
func (r *AuditRepository) ListByActor(actorID int64) ([]AuditRecord, error) {
	query := "SELECT id, actor_id, action, target_id, outcome, created_at FROM audit_log WHERE actor_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := r.db.Query(query, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.Action, &rec.TargetID, &rec.Outcome, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
