package models

import "time"

// Role is a family member's privilege level. Roles are totally ordered:
// owner > admin > member > viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// roleRanks orders roles by privilege; higher is more privileged.
var roleRanks = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Rank returns the role's position in the privilege order, 0 for unknown roles.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the four defined roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r has privilege equal to or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && other.Valid() && r.Rank() >= other.Rank()
}

// ParseRole converts a string to a Role, reporting whether it is valid.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// MemberStatus tracks a member's lifecycle within a family.
type MemberStatus string

const (
	StatusActive  MemberStatus = "active"
	StatusPending MemberStatus = "pending"
	StatusRemoved MemberStatus = "removed"
)

// Visibility controls whether a family accepts join requests from strangers.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Family represents a shared household tracking finances together.
// Invariant: exactly one active member holds the owner role at all times.
type Family struct {
	ID         int64
	Name       string
	Visibility Visibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FamilyMember represents the relationship between a user and a family.
// The (FamilyID, UserID) pair is unique.
type FamilyMember struct {
	ID       int64
	FamilyID int64
	UserID   int64
	Role     Role
	Status   MemberStatus
	JoinedAt time.Time
}

// IsActive reports whether the member currently participates in the family.
func (m *FamilyMember) IsActive() bool {
	return m.Status == StatusActive
}
