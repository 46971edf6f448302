package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"tripledger/internal/models"
	"tripledger/internal/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func member(id int64, contribution string) models.TripMember {
	return models.TripMember{ID: id, Contribution: dec(contribution), IsActive: true}
}

func TestMemberBalances(t *testing.T) {
	t.Run("no expenses", func(t *testing.T) {
		members := []models.TripMember{member(1, "100"), member(2, "0")}
		balances := MemberBalances(members, nil)
		if len(balances) != 2 {
			t.Fatalf("got %d balances, want 2", len(balances))
		}
		if !balances[0].Balance.Equal(dec("100")) {
			t.Errorf("member 1 balance = %s, want 100", balances[0].Balance)
		}
		if !balances[1].Balance.IsZero() {
			t.Errorf("member 2 balance = %s, want 0", balances[1].Balance)
		}
	})

	t.Run("paid and share", func(t *testing.T) {
		// A paid 1000 out of pocket, shared equally with B.
		members := []models.TripMember{member(1, "0"), member(2, "0")}
		expenses := []models.Expense{{
			ID: 1, PayerMemberID: 1, Amount: dec("1000"),
			Participants: []models.ExpenseParticipant{
				{TripMemberID: 1, ShareAmount: dec("500")},
				{TripMemberID: 2, ShareAmount: dec("500")},
			},
		}}
		balances := MemberBalances(members, expenses)
		if !balances[0].Balance.Equal(dec("500")) {
			t.Errorf("payer balance = %s, want 500", balances[0].Balance)
		}
		if !balances[1].Balance.Equal(dec("-500")) {
			t.Errorf("participant balance = %s, want -500", balances[1].Balance)
		}
	})

	t.Run("fund-paid expense does not credit payer", func(t *testing.T) {
		members := []models.TripMember{member(1, "300"), member(2, "300")}
		expenses := []models.Expense{{
			ID: 1, PayerMemberID: 1, Amount: dec("200"), IsPaidFromFund: true,
			Participants: []models.ExpenseParticipant{
				{TripMemberID: 1, ShareAmount: dec("100")},
				{TripMemberID: 2, ShareAmount: dec("100")},
			},
		}}
		balances := MemberBalances(members, expenses)
		if !balances[0].TotalPaid.IsZero() {
			t.Errorf("fund payer totalPaid = %s, want 0", balances[0].TotalPaid)
		}
		if !balances[0].Balance.Equal(dec("200")) {
			t.Errorf("member 1 balance = %s, want 200", balances[0].Balance)
		}
	})

	t.Run("income reverses sign", func(t *testing.T) {
		members := []models.TripMember{member(1, "0"), member(2, "0")}
		expenses := []models.Expense{{
			ID: 1, PayerMemberID: 1, Amount: dec("60"), IsIncome: true,
			Participants: []models.ExpenseParticipant{
				{TripMemberID: 1, ShareAmount: dec("30")},
				{TripMemberID: 2, ShareAmount: dec("30")},
			},
		}}
		balances := MemberBalances(members, expenses)
		// Member 1 received 60 on behalf of both: owes the group 30.
		if !balances[0].Balance.Equal(dec("-30")) {
			t.Errorf("receiver balance = %s, want -30", balances[0].Balance)
		}
		if !balances[1].Balance.Equal(dec("30")) {
			t.Errorf("other balance = %s, want 30", balances[1].Balance)
		}
	})
}

// The sum of balances over active members must equal the fund pool's net
// position: total contributions minus fund-paid expense total.
func TestGlobalLedgerInvariant(t *testing.T) {
	members := []models.TripMember{member(1, "150.50"), member(2, "49.50"), member(3, "0")}
	expenses := []models.Expense{
		{
			ID: 1, PayerMemberID: 1, Amount: dec("99.99"),
			Participants: []models.ExpenseParticipant{
				{TripMemberID: 1, ShareAmount: dec("33.33")},
				{TripMemberID: 2, ShareAmount: dec("33.33")},
				{TripMemberID: 3, ShareAmount: dec("33.33")},
			},
		},
		{
			ID: 2, PayerMemberID: 2, Amount: dec("120.00"), IsPaidFromFund: true,
			Participants: []models.ExpenseParticipant{
				{TripMemberID: 2, ShareAmount: dec("60.00")},
				{TripMemberID: 3, ShareAmount: dec("60.00")},
			},
		},
		{
			ID: 3, PayerMemberID: 3, Amount: dec("10.01"),
			Participants: []models.ExpenseParticipant{
				{TripMemberID: 1, ShareAmount: dec("10.01")},
			},
		},
	}

	balances := MemberBalances(members, expenses)
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	pool := FundPosition(members, expenses)
	if !money.Equal(total, pool) {
		t.Errorf("sum(balances) = %s, fund position = %s", total, pool)
	}
	// 150.50 + 49.50 - 120.00 = 80.00
	if !pool.Equal(dec("80.00")) {
		t.Errorf("fund position = %s, want 80.00", pool)
	}
}
