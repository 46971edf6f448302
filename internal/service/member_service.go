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

// MemberService handles trip membership business logic
type MemberService struct {
	memberRepo repository.MembershipStore
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo repository.MembershipStore) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

// ListMembers retrieves the active members of a trip
func (s *MemberService) ListMembers(ctx context.Context, tripID, callerUserID int64) ([]models.TripMember, error) {
	isMember, err := s.memberRepo.IsActiveMember(ctx, tripID, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify trip membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotTripMember
	}

	members, err := s.memberRepo.ActiveMembers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddVirtualMember adds a placeholder member without a user account.
// Virtual members can owe and be owed money until a real user takes
// over the row through a REPLACE invitation.
func (s *MemberService) AddVirtualMember(ctx context.Context, tripID, callerUserID int64, displayName string, contribution decimal.Decimal) (*models.TripMember, error) {
	if _, err := verifyAdmin(ctx, s.memberRepo, tripID, callerUserID); err != nil {
		return nil, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("display name is required for a virtual member: %w", ErrValidation)
	}
	if contribution.IsNegative() {
		return nil, fmt.Errorf("contribution cannot be negative: %w", ErrValidation)
	}

	member := &models.TripMember{
		TripID:       tripID,
		DisplayName:  &displayName,
		Contribution: money.Round(contribution),
	}
	if err := s.memberRepo.AddVirtual(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add virtual member: %w", err)
	}
	return member, nil
}

// RemoveMember deactivates a member. The row stays so historical
// expenses keep their references. Removing the last active admin is
// refused.
func (s *MemberService) RemoveMember(ctx context.Context, tripID, callerUserID, memberID int64) error {
	caller, err := verifyAdmin(ctx, s.memberRepo, tripID, callerUserID)
	if err != nil {
		return err
	}
	if caller.ID == memberID {
		return fmt.Errorf("admins cannot remove themselves: %w", ErrNotAllowed)
	}

	return s.memberRepo.InTx(ctx, func(tx repository.MembershipTx) error {
		member, err := tx.MemberForUpdate(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
		if member == nil || member.TripID != tripID || !member.IsActive {
			return ErrMemberNotFound
		}

		if member.Role == models.RoleAdmin {
			admins, err := tx.CountActiveAdmins(ctx, tripID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		return tx.Deactivate(ctx, memberID)
	})
}

// ChangeRole promotes or demotes a member. Demoting the last active
// admin is refused.
func (s *MemberService) ChangeRole(ctx context.Context, tripID, callerUserID, memberID int64, role string) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return fmt.Errorf("invalid role %q: %w", role, ErrValidation)
	}
	caller, err := verifyAdmin(ctx, s.memberRepo, tripID, callerUserID)
	if err != nil {
		return err
	}
	if caller.ID == memberID {
		return fmt.Errorf("admins cannot change their own role: %w", ErrNotAllowed)
	}

	return s.memberRepo.InTx(ctx, func(tx repository.MembershipTx) error {
		member, err := tx.MemberForUpdate(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
		if member == nil || member.TripID != tripID || !member.IsActive {
			return ErrMemberNotFound
		}
		if member.Role == role {
			return nil
		}

		if member.Role == models.RoleAdmin && role == models.RoleMember {
			admins, err := tx.CountActiveAdmins(ctx, tripID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		return tx.SetRole(ctx, memberID, role)
	})
}

// UpdateContribution sets a member's paid-in fund contribution
func (s *MemberService) UpdateContribution(ctx context.Context, tripID, callerUserID, memberID int64, amount decimal.Decimal) error {
	return s.BatchUpdateContributions(ctx, tripID, callerUserID, map[int64]decimal.Decimal{memberID: amount})
}

// BatchUpdateContributions sets several members' contributions in one
// transaction, so a partial failure changes nothing.
func (s *MemberService) BatchUpdateContributions(ctx context.Context, tripID, callerUserID int64, amounts map[int64]decimal.Decimal) error {
	if _, err := verifyAdmin(ctx, s.memberRepo, tripID, callerUserID); err != nil {
		return err
	}
	for memberID, amount := range amounts {
		if amount.IsNegative() {
			return fmt.Errorf("contribution for member %d cannot be negative: %w", memberID, ErrValidation)
		}
	}

	return s.memberRepo.InTx(ctx, func(tx repository.MembershipTx) error {
		for memberID, amount := range amounts {
			member, err := tx.MemberForUpdate(ctx, memberID)
			if err != nil {
				return fmt.Errorf("failed to load member: %w", err)
			}
			if member == nil || member.TripID != tripID || !member.IsActive {
				return ErrMemberNotFound
			}
			if err := tx.SetContribution(ctx, memberID, money.Round(amount)); err != nil {
				return err
			}
		}
		return nil
	})
}
