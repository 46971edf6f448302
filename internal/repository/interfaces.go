package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tripledger/internal/models"
)

// UserStore persists user accounts. Lookup methods return (nil, nil)
// when no row matches.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id int64) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByOAuthSubject(ctx context.Context, subject string) (*models.User, error)
	EmailsByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// TripStore persists trips.
type TripStore interface {
	// Create inserts the trip and its owner's admin membership in one
	// transaction.
	Create(ctx context.Context, trip *models.Trip, owner *models.TripMember) error
	ByID(ctx context.Context, id int64) (*models.Trip, error)
	ForUser(ctx context.Context, userID int64) ([]models.Trip, error)
}

// MembershipTx is the member row surface available inside one database
// transaction. Reads through it take row locks where the engine supports
// them.
type MembershipTx interface {
	MemberForUpdate(ctx context.Context, memberID int64) (*models.TripMember, error)
	CountActiveAdmins(ctx context.Context, tripID int64) (int, error)
	SetRole(ctx context.Context, memberID int64, role string) error
	Deactivate(ctx context.Context, memberID int64) error
	SetContribution(ctx context.Context, memberID int64, amount decimal.Decimal) error
}

// MembershipStore persists trip members.
type MembershipStore interface {
	ActiveMembers(ctx context.Context, tripID int64) ([]models.TripMember, error)
	ByID(ctx context.Context, memberID int64) (*models.TripMember, error)
	// ActiveMemberOf returns the user's active member row in the trip,
	// or nil when the user is not an active member.
	ActiveMemberOf(ctx context.Context, tripID, userID int64) (*models.TripMember, error)
	IsActiveMember(ctx context.Context, tripID, userID int64) (bool, error)
	AddVirtual(ctx context.Context, member *models.TripMember) error
	// InTx runs fn inside a single transaction, committing only if fn
	// returns nil.
	InTx(ctx context.Context, fn func(tx MembershipTx) error) error
}

// InvitationTx is the row surface the acceptance transaction runs on:
// the invitation itself plus the membership rows it may mutate.
type InvitationTx interface {
	InvitationForUpdate(ctx context.Context, id int64) (*models.TripInvitation, error)
	SetStatus(ctx context.Context, id int64, status string, respondedAt *time.Time) error
	IsActiveMember(ctx context.Context, tripID, userID int64) (bool, error)
	MemberForUpdate(ctx context.Context, memberID int64) (*models.TripMember, error)
	// PromoteVirtual links a virtual member row to a real user in place,
	// preserving the row ID so expense references stay valid.
	PromoteVirtual(ctx context.Context, memberID, userID int64) error
	InsertMember(ctx context.Context, member *models.TripMember) error
}

// InvitationStore persists trip invitations.
type InvitationStore interface {
	Create(ctx context.Context, inv *models.TripInvitation) error
	ByID(ctx context.Context, id int64) (*models.TripInvitation, error)
	HasPending(ctx context.Context, tripID, userID int64) (bool, error)
	ForUser(ctx context.Context, userID int64) ([]models.TripInvitation, error)
	ForTrip(ctx context.Context, tripID int64) ([]models.TripInvitation, error)
	// SweepExpired flips every PENDING invitation past its expiry to
	// EXPIRED in one conditional update and reports how many changed.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	InTx(ctx context.Context, fn func(tx InvitationTx) error) error
}

// ExpenseStore persists expenses and their participant shares.
type ExpenseStore interface {
	// Create inserts the expense and its participants in one transaction.
	Create(ctx context.Context, expense *models.Expense) error
	ByID(ctx context.Context, id int64) (*models.Expense, error)
	// ForTrip returns all expenses of a trip with participants loaded.
	ForTrip(ctx context.Context, tripID int64) ([]models.Expense, error)
	Delete(ctx context.Context, id int64) error
}
