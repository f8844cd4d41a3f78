package models

import "time"

// JoinRequestStatus tracks a join request's resolution.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a user's request to join a public family. At most one
// pending request exists per (family, user) pair.
type JoinRequest struct {
	ID          int64
	FamilyID    int64
	UserID      int64
	Status      JoinRequestStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// IsPending reports whether the request awaits resolution.
func (r *JoinRequest) IsPending() bool {
	return r.Status == JoinRequestPending
}
