package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tripledger/internal/models"
	"tripledger/internal/repository"
)

// InvitationTTL is how long an invitation stays open before it expires.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationService owns the invitation lifecycle. Every transition out
// of PENDING happens inside a single transaction with the invitation
// row locked, so two concurrent responses cannot both win.
type InvitationService struct {
	invRepo    repository.InvitationStore
	memberRepo repository.MembershipStore
	tripRepo   repository.TripStore
	userRepo   repository.UserStore
	notifier   Notifier

	// now is replaceable in tests.
	now func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(invRepo repository.InvitationStore, memberRepo repository.MembershipStore,
	tripRepo repository.TripStore, userRepo repository.UserStore, notifier Notifier) *InvitationService {
	return &InvitationService{
		invRepo:    invRepo,
		memberRepo: memberRepo,
		tripRepo:   tripRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateInvitationInput describes a new invitation. TargetMemberID is
// required for REPLACE and ignored for ADD.
type CreateInvitationInput struct {
	TripID         int64
	InvitedUserID  int64
	InviteType     string
	TargetMemberID *int64
	Message        string
}

// Create invites a user into a trip. ADD invitations create a fresh
// member row on acceptance; REPLACE invitations hand an existing
// virtual member's row to the invited user.
func (s *InvitationService) Create(ctx context.Context, callerUserID int64, in CreateInvitationInput) (*models.TripInvitation, error) {
	if _, err := verifyAdmin(ctx, s.memberRepo, in.TripID, callerUserID); err != nil {
		return nil, err
	}
	if in.InviteType != models.InviteTypeAdd && in.InviteType != models.InviteTypeReplace {
		return nil, fmt.Errorf("invalid invitation type %q: %w", in.InviteType, ErrValidation)
	}

	invited, err := s.userRepo.ByID(ctx, in.InvitedUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invited user: %w", err)
	}
	if invited == nil {
		return nil, ErrUserNotFound
	}

	isMember, err := s.memberRepo.IsActiveMember(ctx, in.TripID, in.InvitedUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, ErrAlreadyMember
	}
	hasPending, err := s.invRepo.HasPending(ctx, in.TripID, in.InvitedUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if hasPending {
		return nil, ErrInvitationPending
	}

	if in.InviteType == models.InviteTypeReplace {
		if in.TargetMemberID == nil {
			return nil, fmt.Errorf("REPLACE invitation requires a target member: %w", ErrValidation)
		}
		target, err := s.memberRepo.ByID(ctx, *in.TargetMemberID)
		if err != nil {
			return nil, fmt.Errorf("failed to load target member: %w", err)
		}
		if target == nil || target.TripID != in.TripID || !target.IsActive || !target.IsVirtual {
			return nil, fmt.Errorf("REPLACE target must be an active virtual member of the trip: %w", ErrValidation)
		}
	} else {
		in.TargetMemberID = nil
	}

	inv := &models.TripInvitation{
		TripID:         in.TripID,
		InvitedUserID:  in.InvitedUserID,
		InviteType:     in.InviteType,
		TargetMemberID: in.TargetMemberID,
		Status:         models.InviteStatusPending,
		Message:        strings.TrimSpace(in.Message),
		CreatedBy:      callerUserID,
		ExpiresAt:      s.now().Add(InvitationTTL),
	}
	if err := s.invRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	go s.notifyCreated(inv, invited.Email)
	return inv, nil
}

// Accept makes the invited user a trip member. The whole transition
// runs in one transaction: lock the invitation, re-check its state and
// the user's membership, mutate the member rows, mark ACCEPTED.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID int64) error {
	var accepted *models.TripInvitation

	err := s.invRepo.InTx(ctx, func(tx repository.InvitationTx) error {
		inv, err := tx.InvitationForUpdate(ctx, invitationID)
		if err != nil {
			return fmt.Errorf("failed to load invitation: %w", err)
		}
		if inv == nil {
			return ErrInvitationNotFound
		}
		if inv.InvitedUserID != userID {
			return fmt.Errorf("invitation is addressed to another user: %w", ErrNotAllowed)
		}
		if inv.Status == models.InviteStatusExpired {
			return ErrInvitationExpired
		}
		if inv.IsTerminal() {
			return ErrInvitationResolved
		}

		now := s.now()
		if inv.IsExpired(now) {
			// Persist the expiry so later calls fail the same way
			// without re-deciding.
			if err := tx.SetStatus(ctx, inv.ID, models.InviteStatusExpired, nil); err != nil {
				return err
			}
			return repository.CommitAndReturn(ErrInvitationExpired)
		}

		stillMember, err := tx.IsActiveMember(ctx, inv.TripID, userID)
		if err != nil {
			return fmt.Errorf("failed to re-check membership: %w", err)
		}
		if stillMember {
			return ErrAlreadyMember
		}

		if inv.InviteType == models.InviteTypeReplace {
			if inv.TargetMemberID == nil {
				return fmt.Errorf("REPLACE invitation has no target member: %w", ErrConflict)
			}
			target, err := tx.MemberForUpdate(ctx, *inv.TargetMemberID)
			if err != nil {
				return fmt.Errorf("failed to load target member: %w", err)
			}
			if target == nil || target.TripID != inv.TripID || !target.IsActive || !target.IsVirtual {
				return fmt.Errorf("REPLACE target is no longer an active virtual member: %w", ErrConflict)
			}
			// The row keeps its ID, so every expense and share that
			// references it stays attached to the new user.
			if err := tx.PromoteVirtual(ctx, target.ID, userID); err != nil {
				return err
			}
		} else {
			member := &models.TripMember{
				TripID: inv.TripID,
				UserID: &userID,
				Role:   models.RoleMember,
			}
			if err := tx.InsertMember(ctx, member); err != nil {
				return err
			}
		}

		if err := tx.SetStatus(ctx, inv.ID, models.InviteStatusAccepted, &now); err != nil {
			return err
		}
		inv.Status = models.InviteStatusAccepted
		inv.RespondedAt = &now
		accepted = inv
		return nil
	})
	if err != nil {
		return err
	}

	go s.notifyAccepted(accepted)
	return nil
}

// Reject declines a pending invitation. Only the invited user may
// reject.
func (s *InvitationService) Reject(ctx context.Context, invitationID, userID int64) error {
	var rejected *models.TripInvitation

	err := s.invRepo.InTx(ctx, func(tx repository.InvitationTx) error {
		inv, err := tx.InvitationForUpdate(ctx, invitationID)
		if err != nil {
			return fmt.Errorf("failed to load invitation: %w", err)
		}
		if inv == nil {
			return ErrInvitationNotFound
		}
		if inv.InvitedUserID != userID {
			return fmt.Errorf("invitation is addressed to another user: %w", ErrNotAllowed)
		}
		if inv.Status == models.InviteStatusExpired {
			return ErrInvitationExpired
		}
		if inv.IsTerminal() {
			return ErrInvitationResolved
		}

		now := s.now()
		if inv.IsExpired(now) {
			if err := tx.SetStatus(ctx, inv.ID, models.InviteStatusExpired, nil); err != nil {
				return err
			}
			return repository.CommitAndReturn(ErrInvitationExpired)
		}

		if err := tx.SetStatus(ctx, inv.ID, models.InviteStatusRejected, &now); err != nil {
			return err
		}
		rejected = inv
		return nil
	})
	if err != nil {
		return err
	}

	go s.notifyRejected(rejected)
	return nil
}

// Cancel withdraws a pending invitation. Only its creator may cancel.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, userID int64) error {
	err := s.invRepo.InTx(ctx, func(tx repository.InvitationTx) error {
		inv, err := tx.InvitationForUpdate(ctx, invitationID)
		if err != nil {
			return fmt.Errorf("failed to load invitation: %w", err)
		}
		if inv == nil {
			return ErrInvitationNotFound
		}
		if inv.CreatedBy != userID {
			return fmt.Errorf("only the invitation's creator can cancel it: %w", ErrNotAllowed)
		}
		if inv.Status == models.InviteStatusExpired {
			return ErrInvitationExpired
		}
		if inv.IsTerminal() {
			return ErrInvitationResolved
		}

		now := s.now()
		if inv.IsExpired(now) {
			if err := tx.SetStatus(ctx, inv.ID, models.InviteStatusExpired, nil); err != nil {
				return err
			}
			return repository.CommitAndReturn(ErrInvitationExpired)
		}

		return tx.SetStatus(ctx, inv.ID, models.InviteStatusCancelled, &now)
	})
	return err
}

// ForUser lists invitations addressed to the user, sweeping expired
// ones first so callers never see a stale PENDING.
func (s *InvitationService) ForUser(ctx context.Context, userID int64) ([]models.TripInvitation, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	invitations, err := s.invRepo.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// ForTrip lists a trip's invitations. Admin only.
func (s *InvitationService) ForTrip(ctx context.Context, tripID, callerUserID int64) ([]models.TripInvitation, error) {
	if _, err := verifyAdmin(ctx, s.memberRepo, tripID, callerUserID); err != nil {
		return nil, err
	}
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	invitations, err := s.invRepo.ForTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// SweepExpired flips every overdue PENDING invitation to EXPIRED and
// returns how many changed. Safe to run repeatedly and concurrently; a
// repeat run reports zero.
func (s *InvitationService) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.invRepo.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired invitations: %w", err)
	}
	return count, nil
}

func (s *InvitationService) notifyCreated(inv *models.TripInvitation, toEmail string) {
	ctx, cancel := notifyContext()
	defer cancel()

	tripName := s.tripName(ctx, inv.TripID)
	if err := s.notifier.InvitationCreated(ctx, toEmail, tripName, inv.Message); err != nil {
		log.Printf("Failed to send invitation notification: %v", err)
	}
}

// notifyAccepted tells the inviter and the other active members that
// someone joined. Runs after commit; failures only log.
func (s *InvitationService) notifyAccepted(inv *models.TripInvitation) {
	ctx, cancel := notifyContext()
	defer cancel()

	joined, err := s.userRepo.ByID(ctx, inv.InvitedUserID)
	if err != nil || joined == nil {
		log.Printf("Failed to resolve joined user for notification: %v", err)
		return
	}

	members, err := s.memberRepo.ActiveMembers(ctx, inv.TripID)
	if err != nil {
		log.Printf("Failed to load members for notification: %v", err)
		return
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if m.UserID != nil && *m.UserID != inv.InvitedUserID {
			ids = append(ids, *m.UserID)
		}
	}
	emails, err := s.userRepo.EmailsByIDs(ctx, ids)
	if err != nil {
		log.Printf("Failed to resolve member emails for notification: %v", err)
		return
	}

	tripName := s.tripName(ctx, inv.TripID)
	for _, email := range emails {
		if err := s.notifier.InvitationAccepted(ctx, email, tripName, joined.Name); err != nil {
			log.Printf("Failed to send joined notification: %v", err)
		}
	}
}

func (s *InvitationService) notifyRejected(inv *models.TripInvitation) {
	ctx, cancel := notifyContext()
	defer cancel()

	inviter, err := s.userRepo.ByID(ctx, inv.CreatedBy)
	if err != nil || inviter == nil {
		log.Printf("Failed to resolve inviter for notification: %v", err)
		return
	}
	tripName := s.tripName(ctx, inv.TripID)
	if err := s.notifier.InvitationRejected(ctx, inviter.Email, tripName); err != nil {
		log.Printf("Failed to send rejection notification: %v", err)
	}
}

func (s *InvitationService) tripName(ctx context.Context, tripID int64) string {
	trip, err := s.tripRepo.ByID(ctx, tripID)
	if err != nil || trip == nil {
		return "your trip"
	}
	return trip.Name
}

// notifyContext bounds post-commit notification work, which runs
// detached from the request.
func notifyContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
