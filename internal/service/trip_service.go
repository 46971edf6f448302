package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripledger/internal/models"
	"tripledger/internal/repository"
)

// TripService handles trip business logic
type TripService struct {
	tripRepo   repository.TripStore
	memberRepo repository.MembershipStore
}

// NewTripService creates a new trip service
func NewTripService(tripRepo repository.TripStore, memberRepo repository.MembershipStore) *TripService {
	return &TripService{
		tripRepo:   tripRepo,
		memberRepo: memberRepo,
	}
}

// CreateTrip creates a trip with the creator as its first admin member
func (s *TripService) CreateTrip(ctx context.Context, name string, creatorUserID int64) (*models.Trip, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("trip name is required: %w", ErrValidation)
	}

	trip := &models.Trip{
		Name:      name,
		ShareCode: uuid.New().String(),
		CreatedBy: creatorUserID,
	}
	owner := &models.TripMember{
		UserID:       &creatorUserID,
		Role:         models.RoleAdmin,
		Contribution: decimal.Zero,
	}

	if err := s.tripRepo.Create(ctx, trip, owner); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return trip, nil
}

// GetTrip retrieves a trip the user is an active member of
func (s *TripService) GetTrip(ctx context.Context, tripID, userID int64) (*models.Trip, error) {
	trip, err := s.tripRepo.ByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	if err := s.verifyMembership(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return trip, nil
}

// GetUserTrips retrieves all trips the user is an active member of
func (s *TripService) GetUserTrips(ctx context.Context, userID int64) ([]models.Trip, error) {
	trips, err := s.tripRepo.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user trips: %w", err)
	}
	return trips, nil
}

func (s *TripService) verifyMembership(ctx context.Context, tripID, userID int64) error {
	isMember, err := s.memberRepo.IsActiveMember(ctx, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if !isMember {
		return ErrNotTripMember
	}
	return nil
}

// verifyAdmin returns the caller's member row after checking it holds
// the admin role in the trip.
func verifyAdmin(ctx context.Context, memberRepo repository.MembershipStore, tripID, userID int64) (*models.TripMember, error) {
	member, err := memberRepo.ActiveMemberOf(ctx, tripID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if member == nil {
		return nil, ErrNotTripMember
	}
	if member.Role != models.RoleAdmin {
		return nil, ErrNotTripAdmin
	}
	return member, nil
}
