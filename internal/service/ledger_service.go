package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tripledger/internal/calculator"
	"tripledger/internal/models"
	"tripledger/internal/repository"
)

// LedgerService derives balances and settlement plans from the stored
// contributions and expenses. Nothing here is persisted; every call
// recomputes from the current rows.
type LedgerService struct {
	tripRepo    repository.TripStore
	memberRepo  repository.MembershipStore
	expenseRepo repository.ExpenseStore
}

// NewLedgerService creates a new ledger service
func NewLedgerService(tripRepo repository.TripStore, memberRepo repository.MembershipStore, expenseRepo repository.ExpenseStore) *LedgerService {
	return &LedgerService{
		tripRepo:    tripRepo,
		memberRepo:  memberRepo,
		expenseRepo: expenseRepo,
	}
}

// ComputeBalances returns the per-member balance of every active trip
// member. A trip with no expenses yields balances equal to the
// contributions.
func (s *LedgerService) ComputeBalances(ctx context.Context, tripID, callerUserID int64) ([]calculator.Balance, error) {
	members, _, err := s.load(ctx, tripID, callerUserID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ForTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return calculator.MemberBalances(members, expenses), nil
}

// PlanSettlement computes balances and the transfer plan that settles
// them
func (s *LedgerService) PlanSettlement(ctx context.Context, tripID, callerUserID int64) (*calculator.SettlementPlan, error) {
	balances, err := s.ComputeBalances(ctx, tripID, callerUserID)
	if err != nil {
		return nil, err
	}
	plan := calculator.PlanSettlement(balances)
	return &plan, nil
}

// FundPosition returns the money left in the shared trip fund:
// contributions paid in, minus fund-paid expenses, plus fund income.
func (s *LedgerService) FundPosition(ctx context.Context, tripID, callerUserID int64) (decimal.Decimal, error) {
	members, _, err := s.load(ctx, tripID, callerUserID)
	if err != nil {
		return decimal.Zero, err
	}
	expenses, err := s.expenseRepo.ForTrip(ctx, tripID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load expenses: %w", err)
	}
	return calculator.FundPosition(members, expenses), nil
}

func (s *LedgerService) load(ctx context.Context, tripID, callerUserID int64) ([]models.TripMember, *models.Trip, error) {
	trip, err := s.tripRepo.ByID(ctx, tripID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trip: %w", err)
	}
	if trip == nil {
		return nil, nil, ErrTripNotFound
	}

	isMember, err := s.memberRepo.IsActiveMember(ctx, tripID, callerUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if !isMember {
		return nil, nil, ErrNotTripMember
	}

	members, err := s.memberRepo.ActiveMembers(ctx, tripID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trip members: %w", err)
	}
	return members, trip, nil
}
