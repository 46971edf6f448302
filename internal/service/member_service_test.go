package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tripledger/internal/models"
)

type memberFixture struct {
	state *memState
	svc   *MemberService
	trip  *models.Trip
	admin *models.User
	adm   *models.TripMember
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()
	state := newMemState()
	admin := state.addUser("admin@example.com", "Admin")
	trip := state.addTrip("Alps 2026", admin.ID)
	adm := state.addMember(trip.ID, &admin.ID, models.RoleAdmin, false)

	return &memberFixture{
		state: state,
		svc:   NewMemberService(&fakeMemberStore{state: state}),
		trip:  trip,
		admin: admin,
		adm:   adm,
	}
}

func TestAddVirtualMember(t *testing.T) {
	f := newMemberFixture(t)

	m, err := f.svc.AddVirtualMember(context.Background(), f.trip.ID, f.admin.ID, "Grandma", decimal.RequireFromString("50"))
	if err != nil {
		t.Fatalf("AddVirtualMember() error = %v", err)
	}
	if !m.IsVirtual || !m.IsActive {
		t.Errorf("virtual member flags = virtual %v active %v, want both true", m.IsVirtual, m.IsActive)
	}
	if m.Role != models.RoleMember {
		t.Errorf("role = %q, want member", m.Role)
	}

	t.Run("empty name", func(t *testing.T) {
		_, err := f.svc.AddVirtualMember(context.Background(), f.trip.ID, f.admin.ID, "  ", decimal.Zero)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("non-admin caller", func(t *testing.T) {
		guest := f.state.addUser("guest@example.com", "Guest")
		f.state.addMember(f.trip.ID, &guest.ID, models.RoleMember, false)
		_, err := f.svc.AddVirtualMember(context.Background(), f.trip.ID, guest.ID, "X Y", decimal.Zero)
		if !errors.Is(err, ErrNotTripAdmin) {
			t.Errorf("error = %v, want ErrNotTripAdmin", err)
		}
	})
}

func TestRemoveMemberLastAdmin(t *testing.T) {
	f := newMemberFixture(t)
	second := f.state.addUser("second@example.com", "Second")
	secondAdm := f.state.addMember(f.trip.ID, &second.ID, models.RoleAdmin, false)

	// Two admins: removing one is fine.
	if err := f.svc.RemoveMember(context.Background(), f.trip.ID, f.admin.ID, secondAdm.ID); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if f.state.members[secondAdm.ID].IsActive {
		t.Error("removed member still active")
	}

	// The survivor cannot remove themself.
	if err := f.svc.RemoveMember(context.Background(), f.trip.ID, f.admin.ID, f.adm.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("self-removal error = %v, want ErrNotAllowed", err)
	}

	// Re-activate the second admin and demote the first: now the second
	// is the last admin and cannot be removed by anyone.
	f.state.members[secondAdm.ID].IsActive = true
	f.state.members[f.adm.ID].Role = models.RoleMember
	if err := f.svc.RemoveMember(context.Background(), f.trip.ID, second.ID, f.adm.ID); err != nil {
		t.Fatalf("RemoveMember(plain member) error = %v", err)
	}
	f.state.members[f.adm.ID].IsActive = true
	f.state.members[f.adm.ID].Role = models.RoleAdmin
	f.state.members[secondAdm.ID].Role = models.RoleMember
	if err := f.svc.RemoveMember(context.Background(), f.trip.ID, second.ID, f.adm.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("removal by non-admin error = %v, want ErrNotAllowed", err)
	}
}

func TestChangeRole(t *testing.T) {
	f := newMemberFixture(t)
	guest := f.state.addUser("guest@example.com", "Guest")
	gm := f.state.addMember(f.trip.ID, &guest.ID, models.RoleMember, false)

	if err := f.svc.ChangeRole(context.Background(), f.trip.ID, f.admin.ID, gm.ID, models.RoleAdmin); err != nil {
		t.Fatalf("promote error = %v", err)
	}
	if got := f.state.members[gm.ID].Role; got != models.RoleAdmin {
		t.Errorf("role = %q, want admin", got)
	}

	t.Run("cannot change own role", func(t *testing.T) {
		err := f.svc.ChangeRole(context.Background(), f.trip.ID, f.admin.ID, f.adm.ID, models.RoleMember)
		if !errors.Is(err, ErrNotAllowed) {
			t.Errorf("error = %v, want ErrNotAllowed", err)
		}
	})

	t.Run("demoted member cannot change roles", func(t *testing.T) {
		if err := f.svc.ChangeRole(context.Background(), f.trip.ID, f.admin.ID, gm.ID, models.RoleMember); err != nil {
			t.Fatalf("demote error = %v", err)
		}
		err := f.svc.ChangeRole(context.Background(), f.trip.ID, guest.ID, f.adm.ID, models.RoleMember)
		if !errors.Is(err, ErrNotAllowed) {
			t.Errorf("error = %v, want ErrNotAllowed", err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		err := f.svc.ChangeRole(context.Background(), f.trip.ID, f.admin.ID, gm.ID, "owner")
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestBatchUpdateContributions(t *testing.T) {
	f := newMemberFixture(t)
	guest := f.state.addUser("guest@example.com", "Guest")
	gm := f.state.addMember(f.trip.ID, &guest.ID, models.RoleMember, false)

	amounts := map[int64]decimal.Decimal{
		f.adm.ID: decimal.RequireFromString("100.505"),
		gm.ID:    decimal.RequireFromString("50"),
	}
	if err := f.svc.BatchUpdateContributions(context.Background(), f.trip.ID, f.admin.ID, amounts); err != nil {
		t.Fatalf("BatchUpdateContributions() error = %v", err)
	}
	if got := f.state.members[f.adm.ID].Contribution; got.StringFixed(2) != "100.51" {
		t.Errorf("contribution = %s, want 100.51 (rounded)", got)
	}
	if got := f.state.members[gm.ID].Contribution; got.StringFixed(2) != "50.00" {
		t.Errorf("contribution = %s, want 50.00", got)
	}

	t.Run("negative amount", func(t *testing.T) {
		err := f.svc.UpdateContribution(context.Background(), f.trip.ID, f.admin.ID, gm.ID, decimal.RequireFromString("-1"))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("unknown member fails the whole batch", func(t *testing.T) {
		err := f.svc.BatchUpdateContributions(context.Background(), f.trip.ID, f.admin.ID, map[int64]decimal.Decimal{
			9999: decimal.RequireFromString("10"),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
