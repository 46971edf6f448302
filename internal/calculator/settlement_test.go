package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"tripledger/internal/money"
)

func balance(memberID int64, amount string) Balance {
	return Balance{MemberID: memberID, Balance: dec(amount)}
}

func TestPlanSettlementSinglePair(t *testing.T) {
	// A is owed 500, B owes 500: exactly one transfer B -> A.
	plan := PlanSettlement([]Balance{balance(1, "500"), balance(2, "-500")})

	if plan.TotalTransactions != 1 {
		t.Fatalf("totalTransactions = %d, want 1", plan.TotalTransactions)
	}
	tr := plan.Settlements[0]
	if tr.FromMemberID != 2 || tr.ToMemberID != 1 || !tr.Amount.Equal(dec("500")) {
		t.Errorf("transfer = {from: %d, to: %d, amount: %s}, want {from: 2, to: 1, amount: 500}",
			tr.FromMemberID, tr.ToMemberID, tr.Amount)
	}
	if !plan.TotalAmount.Equal(dec("500")) {
		t.Errorf("totalAmount = %s, want 500", plan.TotalAmount)
	}
}

func TestPlanSettlementAllSettled(t *testing.T) {
	plan := PlanSettlement([]Balance{balance(1, "0"), balance(2, "0.005"), balance(3, "-0.005")})

	if plan.TotalTransactions != 0 {
		t.Errorf("totalTransactions = %d, want 0", plan.TotalTransactions)
	}
	if len(plan.Settlements) != 0 {
		t.Errorf("settlements = %v, want empty", plan.Settlements)
	}
}

func TestPlanSettlementDeterministicTieBreak(t *testing.T) {
	// Equal magnitudes: lower member ID is matched first.
	plan := PlanSettlement([]Balance{
		balance(4, "-50"), balance(2, "50"), balance(3, "50"), balance(1, "-50"),
	})
	if plan.TotalTransactions != 2 {
		t.Fatalf("totalTransactions = %d, want 2", plan.TotalTransactions)
	}
	first := plan.Settlements[0]
	if first.FromMemberID != 1 || first.ToMemberID != 2 {
		t.Errorf("first transfer = %d -> %d, want 1 -> 2", first.FromMemberID, first.ToMemberID)
	}
	second := plan.Settlements[1]
	if second.FromMemberID != 4 || second.ToMemberID != 3 {
		t.Errorf("second transfer = %d -> %d, want 4 -> 3", second.FromMemberID, second.ToMemberID)
	}
}

// Every plan must zero every member exactly, emit only positive amounts
// and use at most N-1 transfers for N unsettled members.
func TestPlanSettlementProperties(t *testing.T) {
	tests := []struct {
		name     string
		balances []Balance
	}{
		{
			name:     "one creditor many debtors",
			balances: []Balance{balance(1, "600"), balance(2, "-100"), balance(3, "-200"), balance(4, "-300")},
		},
		{
			name:     "one debtor many creditors",
			balances: []Balance{balance(1, "-99.99"), balance(2, "33.33"), balance(3, "33.33"), balance(4, "33.33")},
		},
		{
			name: "interleaved magnitudes",
			balances: []Balance{
				balance(1, "250.10"), balance(2, "-0.10"), balance(3, "-125.25"),
				balance(4, "-124.75"), balance(5, "0.005"), balance(6, "-0.005"),
			},
		},
		{
			name:     "cent-level amounts",
			balances: []Balance{balance(1, "0.03"), balance(2, "-0.01"), balance(3, "-0.02")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanSettlement(tt.balances)

			unsettled := 0
			net := make(map[int64]decimal.Decimal)
			for _, b := range tt.balances {
				net[b.MemberID] = b.Balance
				if !money.IsSettled(b.Balance) {
					unsettled++
				}
			}
			if plan.TotalTransactions > unsettled-1 {
				t.Errorf("plan uses %d transactions for %d unsettled members", plan.TotalTransactions, unsettled)
			}

			for _, tr := range plan.Settlements {
				if !tr.Amount.IsPositive() {
					t.Errorf("non-positive transfer amount %s", tr.Amount)
				}
				net[tr.FromMemberID] = net[tr.FromMemberID].Add(tr.Amount)
				net[tr.ToMemberID] = net[tr.ToMemberID].Sub(tr.Amount)
			}
			for id, remaining := range net {
				if !money.IsSettled(remaining) {
					t.Errorf("member %d left with %s after plan", id, remaining)
				}
			}
		})
	}
}
