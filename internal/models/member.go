package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member roles within a trip.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// TripMember is a participant of a trip. A member is either linked to a
// real user account (UserID set, IsVirtual false) or is a virtual
// placeholder (UserID nil, IsVirtual true, DisplayName set). Expenses
// reference members, never users, so promoting a virtual member to a real
// one keeps all historical rows valid.
type TripMember struct {
	ID           int64
	TripID       int64
	UserID       *int64
	IsVirtual    bool
	DisplayName  *string
	Role         string
	Contribution decimal.Decimal
	IsActive     bool
	JoinedAt     time.Time
	UpdatedAt    time.Time
}

// Name returns the display name for a virtual member, empty otherwise.
// Real members are named by their user record.
func (m *TripMember) Name() string {
	if m.DisplayName != nil {
		return *m.DisplayName
	}
	return ""
}

// IsLinkedTo reports whether the member is the given user's row.
func (m *TripMember) IsLinkedTo(userID int64) bool {
	return m.UserID != nil && *m.UserID == userID
}
