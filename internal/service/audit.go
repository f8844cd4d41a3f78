package service

import (
	"log"

	"budgetme/internal/repository"
)

// AuditLogger appends activity records without ever failing the primary
// mutation: appends happen after commit and errors are only logged.
type AuditLogger struct {
	repo *repository.AuditRepository
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(repo *repository.AuditRepository) *AuditLogger {
	return &AuditLogger{repo: repo}
}

// Append records an activity outcome, fire-and-forget
func (l *AuditLogger) Append(actorID int64, action string, targetID int64, outcome string) {
	if err := l.repo.Append(actorID, action, targetID, outcome); err != nil {
		log.Printf("Warning: failed to append audit record (%s by %d): %v", action, actorID, err)
	}
}
