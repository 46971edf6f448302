package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tripledger/internal/models"
	"tripledger/internal/money"
)

type expenseFixture struct {
	state *memState
	svc   *ExpenseService
	trip  *models.Trip
	user  *models.User
	m1    *models.TripMember
	m2    *models.TripMember
	m3    *models.TripMember
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()
	state := newMemState()
	user := state.addUser("admin@example.com", "Admin")
	trip := state.addTrip("Alps 2026", user.ID)
	m1 := state.addMember(trip.ID, &user.ID, models.RoleAdmin, false)
	m2 := state.addMember(trip.ID, nil, models.RoleMember, true)
	m3 := state.addMember(trip.ID, nil, models.RoleMember, true)

	return &expenseFixture{
		state: state,
		svc:   NewExpenseService(&fakeExpenseStore{state: state}, &fakeMemberStore{state: state}),
		trip:  trip,
		user:  user,
		m1:    m1,
		m2:    m2,
		m3:    m3,
	}
}

func TestCreateExpenseEqualSplit(t *testing.T) {
	f := newExpenseFixture(t)

	expense, err := f.svc.CreateExpense(context.Background(), f.user.ID, ExpenseInput{
		TripID:        f.trip.ID,
		Description:   "Groceries",
		Amount:        decimal.RequireFromString("100.00"),
		PayerMemberID: f.m1.ID,
		Participants:  []int64{f.m1.ID, f.m2.ID, f.m3.ID},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if len(expense.Participants) != 3 {
		t.Fatalf("got %d participants, want 3", len(expense.Participants))
	}
	total := decimal.Zero
	for _, p := range expense.Participants {
		total = total.Add(p.ShareAmount)
	}
	if !total.Equal(expense.Amount) {
		t.Errorf("shares sum to %s, want %s", total, expense.Amount)
	}
	// 100.00 / 3: the leftover cent lands on the first participant.
	if got := expense.Participants[0].ShareAmount.StringFixed(2); got != "33.34" {
		t.Errorf("first share = %s, want 33.34", got)
	}
}

func TestCreateExpenseExplicitShares(t *testing.T) {
	f := newExpenseFixture(t)

	expense, err := f.svc.CreateExpense(context.Background(), f.user.ID, ExpenseInput{
		TripID:        f.trip.ID,
		Description:   "Cable car",
		Amount:        decimal.RequireFromString("90.00"),
		PayerMemberID: f.m2.ID,
		Participants:  []int64{f.m1.ID, f.m2.ID},
		Shares: map[int64]decimal.Decimal{
			f.m1.ID: decimal.RequireFromString("60.00"),
			f.m2.ID: decimal.RequireFromString("30.00"),
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if got := expense.Participants[0].ShareAmount; !money.Equal(got, decimal.RequireFromString("60.00")) {
		t.Errorf("first share = %s, want 60.00", got)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	f := newExpenseFixture(t)

	base := ExpenseInput{
		TripID:        f.trip.ID,
		Description:   "Dinner",
		Amount:        decimal.RequireFromString("50.00"),
		PayerMemberID: f.m1.ID,
		Participants:  []int64{f.m1.ID, f.m2.ID},
	}

	tests := []struct {
		name   string
		mutate func(in *ExpenseInput)
	}{
		{
			name:   "empty description",
			mutate: func(in *ExpenseInput) { in.Description = "  " },
		},
		{
			name:   "zero amount",
			mutate: func(in *ExpenseInput) { in.Amount = decimal.Zero },
		},
		{
			name:   "negative amount",
			mutate: func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("-5") },
		},
		{
			name:   "no participants",
			mutate: func(in *ExpenseInput) { in.Participants = nil },
		},
		{
			name:   "duplicate participant",
			mutate: func(in *ExpenseInput) { in.Participants = []int64{f.m1.ID, f.m1.ID} },
		},
		{
			name:   "payer outside trip",
			mutate: func(in *ExpenseInput) { in.PayerMemberID = 9999 },
		},
		{
			name:   "participant outside trip",
			mutate: func(in *ExpenseInput) { in.Participants = []int64{f.m1.ID, 9999} },
		},
		{
			name: "shares do not sum to amount",
			mutate: func(in *ExpenseInput) {
				in.Shares = map[int64]decimal.Decimal{
					f.m1.ID: decimal.RequireFromString("10.00"),
					f.m2.ID: decimal.RequireFromString("10.00"),
				}
			},
		},
		{
			name: "share for a non-participant",
			mutate: func(in *ExpenseInput) {
				in.Shares = map[int64]decimal.Decimal{
					f.m1.ID: decimal.RequireFromString("25.00"),
					f.m3.ID: decimal.RequireFromString("25.00"),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if _, err := f.svc.CreateExpense(context.Background(), f.user.ID, in); !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}

	t.Run("caller outside trip", func(t *testing.T) {
		outsider := f.state.addUser("x@example.com", "X")
		if _, err := f.svc.CreateExpense(context.Background(), outsider.ID, base); !errors.Is(err, ErrNotTripMember) {
			t.Errorf("error = %v, want ErrNotTripMember", err)
		}
	})
}

func TestDeleteExpense(t *testing.T) {
	f := newExpenseFixture(t)
	creator := f.state.addUser("creator@example.com", "Creator")
	f.state.addMember(f.trip.ID, &creator.ID, models.RoleMember, false)

	expense, err := f.svc.CreateExpense(context.Background(), creator.ID, ExpenseInput{
		TripID:        f.trip.ID,
		Description:   "Taxi",
		Amount:        decimal.RequireFromString("20.00"),
		PayerMemberID: f.m1.ID,
		Participants:  []int64{f.m1.ID},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	t.Run("unrelated member cannot delete", func(t *testing.T) {
		other := f.state.addUser("other@example.com", "Other")
		f.state.addMember(f.trip.ID, &other.ID, models.RoleMember, false)
		if err := f.svc.DeleteExpense(context.Background(), other.ID, expense.ID); !errors.Is(err, ErrNotAllowed) {
			t.Errorf("error = %v, want ErrNotAllowed", err)
		}
	})

	t.Run("creator can delete", func(t *testing.T) {
		if err := f.svc.DeleteExpense(context.Background(), creator.ID, expense.ID); err != nil {
			t.Errorf("DeleteExpense() error = %v", err)
		}
		if _, ok := f.state.expenses[expense.ID]; ok {
			t.Error("expense still stored after delete")
		}
	})

	t.Run("missing expense", func(t *testing.T) {
		if err := f.svc.DeleteExpense(context.Background(), f.user.ID, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
