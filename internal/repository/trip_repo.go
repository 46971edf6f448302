package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tripledger/internal/database"
	"tripledger/internal/models"
	"tripledger/internal/money"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *database.DB
}

var _ TripStore = (*TripRepository)(nil)

// NewTripRepository creates a new trip repository
func NewTripRepository(db *database.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = "id, name, share_code, created_by, created_at, updated_at"

func scanTrip(scan func(dest ...interface{}) error) (*models.Trip, error) {
	var t models.Trip
	err := scan(&t.ID, &t.Name, &t.ShareCode, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trip: %w", err)
	}
	return &t, nil
}

// Create inserts the trip and its owner's admin membership in one
// transaction.
func (r *TripRepository) Create(ctx context.Context, trip *models.Trip, owner *models.TripMember) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO trips (name, share_code, created_by) VALUES (?, ?, ?)"
	tripID, err := tx.ExecReturningID(ctx, query, trip.Name, trip.ShareCode, trip.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	query = `INSERT INTO trip_members (trip_id, user_id, is_virtual, display_name, role, contribution, is_active)
		VALUES (?, ?, 0, NULL, ?, ?, 1)`
	memberID, err := tx.ExecReturningID(ctx, query, tripID, owner.UserID, models.RoleAdmin, money.Format(owner.Contribution))
	if err != nil {
		return fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	trip.ID = tripID
	owner.ID = memberID
	owner.TripID = tripID
	owner.Role = models.RoleAdmin
	owner.IsActive = true
	return nil
}

// ByID retrieves a trip by ID
func (r *TripRepository) ByID(ctx context.Context, id int64) (*models.Trip, error) {
	query := "SELECT " + tripColumns + " FROM trips WHERE id = ?"
	return scanTrip(r.db.QueryRow(ctx, query, id).Scan)
}

// ForUser retrieves all trips where the user is an active member
func (r *TripRepository) ForUser(ctx context.Context, userID int64) ([]models.Trip, error) {
	query := `
		SELECT t.id, t.name, t.share_code, t.created_by, t.created_at, t.updated_at
		FROM trips t
		INNER JOIN trip_members m ON t.id = m.trip_id
		WHERE m.user_id = ? AND m.is_active = 1
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows.Scan)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}
