package models

import "time"

// Invitation types.
const (
	InviteTypeAdd     = "ADD"
	InviteTypeReplace = "REPLACE"
)

// Invitation statuses. PENDING moves to exactly one of the terminal
// states and never back.
const (
	InviteStatusPending   = "PENDING"
	InviteStatusAccepted  = "ACCEPTED"
	InviteStatusRejected  = "REJECTED"
	InviteStatusExpired   = "EXPIRED"
	InviteStatusCancelled = "CANCELLED"
)

// TripInvitation invites a user into a trip, either as a new member (ADD)
// or to take over an existing virtual member's row (REPLACE).
type TripInvitation struct {
	ID             int64
	TripID         int64
	InvitedUserID  int64
	InviteType     string
	TargetMemberID *int64 // required for REPLACE
	Status         string
	Message        string
	CreatedBy      int64
	CreatedAt      time.Time
	ExpiresAt      time.Time
	RespondedAt    *time.Time
}

func (i *TripInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *TripInvitation) IsPending() bool {
	return i.Status == InviteStatusPending
}

// IsTerminal reports whether the invitation has reached a final state.
func (i *TripInvitation) IsTerminal() bool {
	return i.Status != InviteStatusPending
}
