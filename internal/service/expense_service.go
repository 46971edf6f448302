package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tripledger/internal/models"
	"tripledger/internal/money"
	"tripledger/internal/repository"
)

// ExpenseService handles expense recording business logic
type ExpenseService struct {
	expenseRepo repository.ExpenseStore
	memberRepo  repository.MembershipStore
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo repository.ExpenseStore, memberRepo repository.MembershipStore) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		memberRepo:  memberRepo,
	}
}

// ExpenseInput describes a new expense. Shares maps participant member
// IDs to their share of the amount; leave it nil to split equally
// across Participants.
type ExpenseInput struct {
	TripID         int64
	Description    string
	Amount         decimal.Decimal
	IsIncome       bool
	PayerMemberID  int64
	IsPaidFromFund bool
	Participants   []int64
	Shares         map[int64]decimal.Decimal
}

// CreateExpense validates and records an expense with its participant
// shares in one transaction
func (s *ExpenseService) CreateExpense(ctx context.Context, callerUserID int64, in ExpenseInput) (*models.Expense, error) {
	caller, err := s.memberRepo.ActiveMemberOf(ctx, in.TripID, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if caller == nil {
		return nil, ErrNotTripMember
	}

	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, fmt.Errorf("description is required: %w", ErrValidation)
	}
	amount := money.Round(in.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}
	if len(in.Participants) == 0 {
		return nil, fmt.Errorf("at least one participant is required: %w", ErrValidation)
	}

	members, err := s.memberRepo.ActiveMembers(ctx, in.TripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip members: %w", err)
	}
	active := make(map[int64]bool, len(members))
	for _, m := range members {
		active[m.ID] = true
	}
	if !active[in.PayerMemberID] {
		return nil, fmt.Errorf("payer is not an active member of the trip: %w", ErrValidation)
	}
	seen := make(map[int64]bool, len(in.Participants))
	for _, id := range in.Participants {
		if !active[id] {
			return nil, fmt.Errorf("participant %d is not an active member of the trip: %w", id, ErrValidation)
		}
		if seen[id] {
			return nil, fmt.Errorf("participant %d is listed twice: %w", id, ErrValidation)
		}
		seen[id] = true
	}

	shares, err := resolveShares(amount, in.Participants, in.Shares)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		TripID:         in.TripID,
		Description:    in.Description,
		Amount:         amount,
		IsIncome:       in.IsIncome,
		PayerMemberID:  in.PayerMemberID,
		IsPaidFromFund: in.IsPaidFromFund,
		CreatedBy:      callerUserID,
	}
	for _, id := range in.Participants {
		expense.Participants = append(expense.Participants, models.ExpenseParticipant{
			TripMemberID: id,
			ShareAmount:  shares[id],
		})
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

// resolveShares returns the per-participant share map, splitting the
// amount equally when no explicit shares were given. Explicit shares
// must cover exactly the participants and sum to the amount within one
// minor unit.
func resolveShares(amount decimal.Decimal, participants []int64, explicit map[int64]decimal.Decimal) (map[int64]decimal.Decimal, error) {
	shares := make(map[int64]decimal.Decimal, len(participants))

	if len(explicit) == 0 {
		parts := money.Split(amount, len(participants))
		for i, id := range participants {
			shares[id] = parts[i]
		}
		return shares, nil
	}

	if len(explicit) != len(participants) {
		return nil, fmt.Errorf("shares must cover exactly the participants: %w", ErrValidation)
	}
	total := decimal.Zero
	for _, id := range participants {
		share, ok := explicit[id]
		if !ok {
			return nil, fmt.Errorf("missing share for participant %d: %w", id, ErrValidation)
		}
		if share.IsNegative() {
			return nil, fmt.Errorf("share for participant %d cannot be negative: %w", id, ErrValidation)
		}
		shares[id] = money.Round(share)
		total = total.Add(shares[id])
	}
	if !money.Equal(total, amount) {
		return nil, fmt.Errorf("shares sum to %s, expense amount is %s: %w",
			money.Format(total), money.Format(amount), ErrValidation)
	}
	return shares, nil
}

// GetExpense retrieves an expense the caller's trip membership allows
func (s *ExpenseService) GetExpense(ctx context.Context, callerUserID, expenseID int64) (*models.Expense, error) {
	expense, err := s.expenseRepo.ByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	isMember, err := s.memberRepo.IsActiveMember(ctx, expense.TripID, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotTripMember
	}
	return expense, nil
}

// ListExpenses retrieves all expenses of a trip
func (s *ExpenseService) ListExpenses(ctx context.Context, tripID, callerUserID int64) ([]models.Expense, error) {
	isMember, err := s.memberRepo.IsActiveMember(ctx, tripID, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotTripMember
	}

	expenses, err := s.expenseRepo.ForTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense. Only a trip admin or the expense's
// creator may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, callerUserID, expenseID int64) error {
	expense, err := s.expenseRepo.ByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	caller, err := s.memberRepo.ActiveMemberOf(ctx, expense.TripID, callerUserID)
	if err != nil {
		return fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if caller == nil {
		return ErrNotTripMember
	}
	if caller.Role != models.RoleAdmin && expense.CreatedBy != callerUserID {
		return fmt.Errorf("only a trip admin or the expense creator can delete it: %w", ErrNotAllowed)
	}

	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
