package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single recorded outgoing (or, with IsIncome, incoming)
// amount within a trip. Amount is always non-negative; direction is
// carried by the IsIncome flag.
type Expense struct {
	ID             int64
	TripID         int64
	Description    string
	Amount         decimal.Decimal
	IsIncome       bool
	PayerMemberID  int64
	IsPaidFromFund bool
	CreatedBy      int64
	CreatedAt      time.Time

	// Participants are the per-member shares of this expense. Loaded by
	// the repository, their share amounts sum to Amount within one cent.
	Participants []ExpenseParticipant
}

// ExpenseParticipant is one member's share of an expense.
type ExpenseParticipant struct {
	ExpenseID    int64
	TripMemberID int64
	ShareAmount  decimal.Decimal
}
