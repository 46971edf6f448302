package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tripledger/internal/database"
	"tripledger/internal/models"
	"tripledger/internal/money"
)

// MemberRepository handles database operations for trip members
type MemberRepository struct {
	db *database.DB
}

var _ MembershipStore = (*MemberRepository)(nil)

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = "id, trip_id, user_id, is_virtual, display_name, role, contribution, is_active, joined_at, updated_at"

func scanMember(scan func(dest ...interface{}) error) (*models.TripMember, error) {
	var m models.TripMember
	var userID sql.NullInt64
	var displayName sql.NullString
	var isVirtual, isActive int
	var contribution string

	err := scan(&m.ID, &m.TripID, &userID, &isVirtual, &displayName, &m.Role,
		&contribution, &isActive, &m.JoinedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip member: %w", err)
	}

	m.UserID = nullInt64(userID)
	m.DisplayName = nullString(displayName)
	m.IsVirtual = isVirtual != 0
	m.IsActive = isActive != 0
	m.Contribution, err = parseAmount(contribution)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func queryMembers(ctx context.Context, q database.DBTX, query string, args ...interface{}) ([]models.TripMember, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trip members: %w", err)
	}
	defer rows.Close()

	var members []models.TripMember
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// ActiveMembers retrieves all active members of a trip ordered by ID
func (r *MemberRepository) ActiveMembers(ctx context.Context, tripID int64) ([]models.TripMember, error) {
	query := "SELECT " + memberColumns + " FROM trip_members WHERE trip_id = ? AND is_active = 1 ORDER BY id"
	return queryMembers(ctx, r.db, query, tripID)
}

// ByID retrieves a member by ID
func (r *MemberRepository) ByID(ctx context.Context, memberID int64) (*models.TripMember, error) {
	query := "SELECT " + memberColumns + " FROM trip_members WHERE id = ?"
	return scanMember(r.db.QueryRow(ctx, query, memberID).Scan)
}

// ActiveMemberOf retrieves the user's active member row in the trip
func (r *MemberRepository) ActiveMemberOf(ctx context.Context, tripID, userID int64) (*models.TripMember, error) {
	query := "SELECT " + memberColumns + " FROM trip_members WHERE trip_id = ? AND user_id = ? AND is_active = 1"
	return scanMember(r.db.QueryRow(ctx, query, tripID, userID).Scan)
}

// IsActiveMember checks whether the user has an active membership in the trip
func (r *MemberRepository) IsActiveMember(ctx context.Context, tripID, userID int64) (bool, error) {
	return isActiveMember(ctx, r.db, tripID, userID)
}

func isActiveMember(ctx context.Context, q database.DBTX, tripID, userID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM trip_members WHERE trip_id = ? AND user_id = ? AND is_active = 1"
	if err := q.QueryRow(ctx, query, tripID, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// AddVirtual inserts a virtual placeholder member and populates its ID
func (r *MemberRepository) AddVirtual(ctx context.Context, member *models.TripMember) error {
	query := `INSERT INTO trip_members (trip_id, user_id, is_virtual, display_name, role, contribution, is_active)
		VALUES (?, NULL, 1, ?, ?, ?, 1)`
	id, err := r.db.ExecReturningID(ctx, query, member.TripID, member.DisplayName,
		models.RoleMember, money.Format(member.Contribution))
	if err != nil {
		return fmt.Errorf("failed to add virtual member: %w", err)
	}
	member.ID = id
	member.Role = models.RoleMember
	member.IsVirtual = true
	member.IsActive = true
	return nil
}

// InTx runs fn inside a single transaction
func (r *MemberRepository) InTx(ctx context.Context, fn func(tx MembershipTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&memberTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// memberTx implements MembershipTx over an open transaction.
type memberTx struct {
	tx *database.Tx
}

var _ MembershipTx = (*memberTx)(nil)

func (t *memberTx) MemberForUpdate(ctx context.Context, memberID int64) (*models.TripMember, error) {
	query := "SELECT " + memberColumns + " FROM trip_members WHERE id = ?" + t.tx.GetDialect().LockSuffix()
	return scanMember(t.tx.QueryRow(ctx, query, memberID).Scan)
}

func (t *memberTx) CountActiveAdmins(ctx context.Context, tripID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM trip_members WHERE trip_id = ? AND role = ? AND is_active = 1"
	if err := t.tx.QueryRow(ctx, query, tripID, models.RoleAdmin).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func (t *memberTx) SetRole(ctx context.Context, memberID int64, role string) error {
	query := "UPDATE trip_members SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := t.tx.Exec(ctx, query, role, memberID); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return nil
}

func (t *memberTx) Deactivate(ctx context.Context, memberID int64) error {
	query := "UPDATE trip_members SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := t.tx.Exec(ctx, query, memberID); err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}
	return nil
}

func (t *memberTx) SetContribution(ctx context.Context, memberID int64, amount decimal.Decimal) error {
	query := "UPDATE trip_members SET contribution = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := t.tx.Exec(ctx, query, money.Format(amount), memberID); err != nil {
		return fmt.Errorf("failed to update contribution: %w", err)
	}
	return nil
}
