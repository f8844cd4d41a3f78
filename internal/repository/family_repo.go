package repository

import (
	"database/sql"
	"fmt"
	"time"

	"budgetme/internal/database"
	"budgetme/internal/models"
)

// FamilyRepository handles database operations for families and their members
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family and adds the founder as its active owner.
// Both writes happen in one transaction so a family never exists without an owner.
func (r *FamilyRepository) CreateFamily(name string, visibility models.Visibility, founderUserID int64) (*models.Family, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO families (name, visibility) VALUES (?, ?)"
	familyID, err := tx.ExecReturningID(query, name, string(visibility))
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	query = "INSERT INTO family_members (family_id, user_id, role, status) VALUES (?, ?, ?, ?)"
	_, err = tx.Exec(query, familyID, founderUserID, string(models.RoleOwner), string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to add family owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Family{
		ID:         familyID,
		Name:       name,
		Visibility: visibility,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

// GetFamilyByID retrieves a family by ID, or nil when it does not exist
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT id, name, visibility, created_at, updated_at FROM families WHERE id = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.Visibility,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// GetUserFamilies retrieves all families a user actively belongs to
func (r *FamilyRepository) GetUserFamilies(userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.visibility, f.created_at, f.updated_at
		FROM families f
		INNER JOIN family_members fm ON f.id = fm.family_id
		WHERE fm.user_id = ? AND fm.status = 'active'
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.Visibility, &family.CreatedAt, &family.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

// GetMember retrieves a family member row, or nil when the user has never
// been part of the family
func (r *FamilyRepository) GetMember(familyID, userID int64) (*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, status, joined_at
		FROM family_members
		WHERE family_id = ? AND user_id = ?
	`
	member := &models.FamilyMember{}
	err := r.db.QueryRow(query, familyID, userID).Scan(
		&member.ID,
		&member.FamilyID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}

	return member, nil
}

// GetMemberForUpdate re-reads a member's role and status inside the given
// transaction, locking the row where the dialect supports it. Returns nil
// when the member no longer exists.
func (r *FamilyRepository) GetMemberForUpdate(tx *database.Tx, familyID, userID int64) (*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, status, joined_at
		FROM family_members
		WHERE family_id = ? AND user_id = ?` + tx.GetDialect().RowLockClause()

	member := &models.FamilyMember{}
	err := tx.QueryRow(query, familyID, userID).Scan(
		&member.ID,
		&member.FamilyID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.JoinedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock family member: %w", err)
	}

	return member, nil
}

// UpdateMemberRole updates a member's role inside the given transaction
func (r *FamilyRepository) UpdateMemberRole(tx *database.Tx, familyID, userID int64, role models.Role) error {
	query := "UPDATE family_members SET role = ? WHERE family_id = ? AND user_id = ?"
	result, err := tx.Exec(query, string(role), familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check role update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkMemberRemoved flags a member as removed inside the given transaction.
// The row is kept so the (family, user) pair stays unique across rejoins.
func (r *FamilyRepository) MarkMemberRemoved(tx *database.Tx, familyID, userID int64) error {
	query := "UPDATE family_members SET status = ? WHERE family_id = ? AND user_id = ?"
	result, err := tx.Exec(query, string(models.StatusRemoved), familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check member removal: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReinstateMember reactivates a previously removed member with the given role
func (r *FamilyRepository) ReinstateMember(tx *database.Tx, familyID, userID int64, role models.Role) error {
	query := "UPDATE family_members SET role = ?, status = ?, joined_at = CURRENT_TIMESTAMP WHERE family_id = ? AND user_id = ?"
	_, err := tx.Exec(query, string(role), string(models.StatusActive), familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to reinstate member: %w", err)
	}
	return nil
}

// AddMember inserts a new active member inside the given transaction
func (r *FamilyRepository) AddMember(tx *database.Tx, familyID, userID int64, role models.Role) error {
	query := "INSERT INTO family_members (family_id, user_id, role, status) VALUES (?, ?, ?, ?)"
	_, err := tx.Exec(query, familyID, userID, string(role), string(models.StatusActive))
	if err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// ListMembers retrieves all active members of a family with their user details
func (r *FamilyRepository) ListMembers(familyID int64) ([]models.FamilyMember, []models.User, error) {
	query := `
		SELECT fm.id, fm.family_id, fm.user_id, fm.role, fm.status, fm.joined_at,
		       u.id, u.email, u.name, u.created_at, u.updated_at
		FROM family_members fm
		INNER JOIN users u ON fm.user_id = u.id
		WHERE fm.family_id = ? AND fm.status = 'active'
		ORDER BY fm.joined_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	var users []models.User
	for rows.Next() {
		var member models.FamilyMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.FamilyID, &member.UserID, &member.Role, &member.Status, &member.JoinedAt,
			&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, member)
		users = append(users, user)
	}

	return members, users, rows.Err()
}

// CountActiveOwners counts active members holding the owner role.
// Used by invariant checks and tests; steady state is exactly one.
func (r *FamilyRepository) CountActiveOwners(familyID int64) (int, error) {
	query := "SELECT COUNT(*) FROM family_members WHERE family_id = ? AND role = 'owner' AND status = 'active'"
	var count int
	if err := r.db.QueryRow(query, familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return count, nil
}

// UpdateFamily updates a family's name and visibility
func (r *FamilyRepository) UpdateFamily(familyID int64, name string, visibility models.Visibility) error {
	query := "UPDATE families SET name = ?, visibility = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, name, string(visibility), familyID)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// DeleteFamily deletes a family; members and join requests cascade
func (r *FamilyRepository) DeleteFamily(familyID int64) error {
	query := "DELETE FROM families WHERE id = ?"
	_, err := r.db.Exec(query, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}
