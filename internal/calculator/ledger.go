// Package calculator contains the pure ledger arithmetic: aggregating
// raw expense and contribution records into per-member balances, and
// netting those balances into a transfer plan. It has no storage or
// transport concerns and operates only on exact decimals.
package calculator

import (
	"github.com/shopspring/decimal"

	"tripledger/internal/models"
	"tripledger/internal/money"
)

// Balance is one member's derived financial position.
//
// Balance = Contribution + TotalPaid - TotalShare. Positive means the
// trip owes the member money, negative means the member owes the trip.
type Balance struct {
	MemberID     int64           `json:"memberId"`
	Contribution decimal.Decimal `json:"contribution"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalShare   decimal.Decimal `json:"totalShare"`
	Balance      decimal.Decimal `json:"balance"`
}

// MemberBalances derives the balance of every member from the raw rows.
//
// TotalPaid sums the amounts a member personally fronted (expenses they
// paid that did not come out of the fund pool). TotalShare sums the
// member's participant shares across all expenses. Income rows reverse
// sign on both sides, so a refund reduces what its participants owe.
// Expenses paid from the fund contribute to shares only; the money left
// in the pool stays visible as sum(contribution) - fundPaidTotal.
func MemberBalances(members []models.TripMember, expenses []models.Expense) []Balance {
	paid := make(map[int64]decimal.Decimal, len(members))
	share := make(map[int64]decimal.Decimal, len(members))

	for _, e := range expenses {
		amount := e.Amount
		if e.IsIncome {
			amount = amount.Neg()
		}
		if !e.IsPaidFromFund {
			paid[e.PayerMemberID] = paid[e.PayerMemberID].Add(amount)
		}
		for _, p := range e.Participants {
			s := p.ShareAmount
			if e.IsIncome {
				s = s.Neg()
			}
			share[p.TripMemberID] = share[p.TripMemberID].Add(s)
		}
	}

	balances := make([]Balance, 0, len(members))
	for _, m := range members {
		b := Balance{
			MemberID:     m.ID,
			Contribution: money.Round(m.Contribution),
			TotalPaid:    money.Round(paid[m.ID]),
			TotalShare:   money.Round(share[m.ID]),
		}
		b.Balance = b.Contribution.Add(b.TotalPaid).Sub(b.TotalShare)
		balances = append(balances, b)
	}
	return balances
}

// FundPosition returns the net amount remaining in the shared fund pool:
// total contributions minus the total of fund-paid expenses.
func FundPosition(members []models.TripMember, expenses []models.Expense) decimal.Decimal {
	pool := decimal.Zero
	for _, m := range members {
		pool = pool.Add(m.Contribution)
	}
	for _, e := range expenses {
		if !e.IsPaidFromFund {
			continue
		}
		if e.IsIncome {
			pool = pool.Add(e.Amount)
		} else {
			pool = pool.Sub(e.Amount)
		}
	}
	return money.Round(pool)
}
