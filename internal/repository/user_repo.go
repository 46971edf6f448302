package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tripledger/internal/database"
	"tripledger/internal/models"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *database.DB
}

var _ UserStore = (*UserRepository)(nil)

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, name, password_hash, oauth_subject, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var subject sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &subject, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.OAuthSubject = nullString(subject)
	return &u, nil
}

// Create inserts a new user and populates its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := "INSERT INTO users (email, name, password_hash, oauth_subject) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, user.Email, user.Name, user.PasswordHash, user.OAuthSubject)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// ByID retrieves a user by ID
func (r *UserRepository) ByID(ctx context.Context, id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// ByEmail retrieves a user by email
func (r *UserRepository) ByEmail(ctx context.Context, email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// ByOAuthSubject retrieves a user by OAuth provider subject
func (r *UserRepository) ByOAuthSubject(ctx context.Context, subject string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE oauth_subject = ?"
	return scanUser(r.db.QueryRow(ctx, query, subject))
}

// EmailsByIDs returns the email address of each existing user in ids.
func (r *UserRepository) EmailsByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	emails := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return emails, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := "SELECT id, email FROM users WHERE id IN (" + placeholders + ")"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, fmt.Errorf("failed to scan user email: %w", err)
		}
		emails[id] = email
	}
	return emails, rows.Err()
}
