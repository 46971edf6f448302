package models

import "time"

// User represents a registered account that can own trips and respond to
// invitations.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	OAuthSubject *string // set for accounts created via OAuth sign-in
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
