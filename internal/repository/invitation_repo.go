package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tripledger/internal/database"
	"tripledger/internal/models"
	"tripledger/internal/money"
)

// InvitationRepository handles database operations for trip invitations
type InvitationRepository struct {
	db *database.DB
}

var _ InvitationStore = (*InvitationRepository)(nil)

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *database.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = "id, trip_id, invited_user_id, invite_type, target_member_id, status, message, created_by, created_at, expires_at, responded_at"

func scanInvitation(scan func(dest ...interface{}) error) (*models.TripInvitation, error) {
	var inv models.TripInvitation
	var target sql.NullInt64
	var responded sql.NullTime

	err := scan(&inv.ID, &inv.TripID, &inv.InvitedUserID, &inv.InviteType, &target,
		&inv.Status, &inv.Message, &inv.CreatedBy, &inv.CreatedAt, &inv.ExpiresAt, &responded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invitation: %w", err)
	}

	inv.TargetMemberID = nullInt64(target)
	if responded.Valid {
		t := responded.Time
		inv.RespondedAt = &t
	}
	return &inv, nil
}

func queryInvitations(ctx context.Context, q database.DBTX, query string, args ...interface{}) ([]models.TripInvitation, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.TripInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	return invitations, rows.Err()
}

// Create inserts a new invitation and populates its ID and timestamps
func (r *InvitationRepository) Create(ctx context.Context, inv *models.TripInvitation) error {
	query := `INSERT INTO trip_invitations (trip_id, invited_user_id, invite_type, target_member_id, status, message, created_by, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(ctx, query, inv.TripID, inv.InvitedUserID, inv.InviteType,
		inv.TargetMemberID, inv.Status, inv.Message, inv.CreatedBy, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	inv.ID = id
	created, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if created != nil {
		inv.CreatedAt = created.CreatedAt
	}
	return nil
}

// ByID retrieves an invitation by ID
func (r *InvitationRepository) ByID(ctx context.Context, id int64) (*models.TripInvitation, error) {
	query := "SELECT " + invitationColumns + " FROM trip_invitations WHERE id = ?"
	return scanInvitation(r.db.QueryRow(ctx, query, id).Scan)
}

// HasPending checks whether the user already has a pending invitation
// to the trip
func (r *InvitationRepository) HasPending(ctx context.Context, tripID, userID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM trip_invitations WHERE trip_id = ? AND invited_user_id = ? AND status = ?"
	err := r.db.QueryRow(ctx, query, tripID, userID, models.InviteStatusPending).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	return count > 0, nil
}

// ForUser retrieves all invitations addressed to a user, newest first
func (r *InvitationRepository) ForUser(ctx context.Context, userID int64) ([]models.TripInvitation, error) {
	query := "SELECT " + invitationColumns + " FROM trip_invitations WHERE invited_user_id = ? ORDER BY created_at DESC"
	return queryInvitations(ctx, r.db, query, userID)
}

// ForTrip retrieves all invitations of a trip, newest first
func (r *InvitationRepository) ForTrip(ctx context.Context, tripID int64) ([]models.TripInvitation, error) {
	query := "SELECT " + invitationColumns + " FROM trip_invitations WHERE trip_id = ? ORDER BY created_at DESC"
	return queryInvitations(ctx, r.db, query, tripID)
}

// SweepExpired flips every overdue PENDING invitation to EXPIRED. The
// responded_at column stays NULL because nobody responded.
func (r *InvitationRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	query := "UPDATE trip_invitations SET status = ? WHERE status = ? AND expires_at < ?"
	result, err := r.db.Exec(ctx, query, models.InviteStatusExpired, models.InviteStatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired invitations: %w", err)
	}
	return affected, nil
}

// InTx runs fn inside a single transaction
func (r *InvitationRepository) InTx(ctx context.Context, fn func(tx InvitationTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&invitationTx{tx: tx}); err != nil {
		if inner, commit := CommitRequested(err); commit {
			if cerr := tx.Commit(); cerr != nil {
				return fmt.Errorf("failed to commit transaction: %w", cerr)
			}
			return inner
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// invitationTx implements InvitationTx over an open transaction.
type invitationTx struct {
	tx *database.Tx
}

var _ InvitationTx = (*invitationTx)(nil)

func (t *invitationTx) InvitationForUpdate(ctx context.Context, id int64) (*models.TripInvitation, error) {
	query := "SELECT " + invitationColumns + " FROM trip_invitations WHERE id = ?" + t.tx.GetDialect().LockSuffix()
	return scanInvitation(t.tx.QueryRow(ctx, query, id).Scan)
}

func (t *invitationTx) SetStatus(ctx context.Context, id int64, status string, respondedAt *time.Time) error {
	query := "UPDATE trip_invitations SET status = ?, responded_at = ? WHERE id = ?"
	if _, err := t.tx.Exec(ctx, query, status, respondedAt, id); err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	return nil
}

func (t *invitationTx) IsActiveMember(ctx context.Context, tripID, userID int64) (bool, error) {
	return isActiveMember(ctx, t.tx, tripID, userID)
}

func (t *invitationTx) MemberForUpdate(ctx context.Context, memberID int64) (*models.TripMember, error) {
	query := "SELECT " + memberColumns + " FROM trip_members WHERE id = ?" + t.tx.GetDialect().LockSuffix()
	return scanMember(t.tx.QueryRow(ctx, query, memberID).Scan)
}

func (t *invitationTx) PromoteVirtual(ctx context.Context, memberID, userID int64) error {
	query := `UPDATE trip_members SET user_id = ?, is_virtual = 0, display_name = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := t.tx.Exec(ctx, query, userID, memberID); err != nil {
		return fmt.Errorf("failed to promote virtual member: %w", err)
	}
	return nil
}

func (t *invitationTx) InsertMember(ctx context.Context, member *models.TripMember) error {
	query := `INSERT INTO trip_members (trip_id, user_id, is_virtual, display_name, role, contribution, is_active)
		VALUES (?, ?, 0, NULL, ?, ?, 1)`
	id, err := t.tx.ExecReturningID(ctx, query, member.TripID, member.UserID,
		member.Role, money.Format(member.Contribution))
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	member.ID = id
	member.IsActive = true
	return nil
}
