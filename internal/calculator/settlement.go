package calculator

import (
	"container/heap"

	"github.com/shopspring/decimal"

	"tripledger/internal/money"
)

// Transfer is one proposed peer-to-peer payment.
type Transfer struct {
	FromMemberID int64           `json:"from"`
	ToMemberID   int64           `json:"to"`
	Amount       decimal.Decimal `json:"amount"`
}

// SettlementPlan is the set of transfers that zeroes every balance.
type SettlementPlan struct {
	Settlements       []Transfer      `json:"settlements"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
}

type party struct {
	memberID  int64
	remaining decimal.Decimal // always positive
}

// partyHeap orders parties by remaining amount, largest first. Ties go
// to the lower member ID so plans are deterministic.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }
func (h partyHeap) Less(i, j int) bool {
	if !h[i].remaining.Equal(h[j].remaining) {
		return h[i].remaining.GreaterThan(h[j].remaining)
	}
	return h[i].memberID < h[j].memberID
}
func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *partyHeap) Push(x any)   { *h = append(*h, x.(party)) }
func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// PlanSettlement nets a set of balances into a minimal transfer plan
// using greedy largest-creditor/largest-debtor matching.
//
// Members already within one minor unit of zero are skipped. Each round
// pops the largest creditor and debtor, transfers the smaller of the two
// remainders and re-inserts whichever side is not exhausted. Exact
// decimal subtraction guarantees every remainder reaches exactly zero,
// and the plan never needs more than N-1 transfers for N unsettled
// members. This is a polynomial-time heuristic, not the NP-hard
// minimum-transaction optimum.
func PlanSettlement(balances []Balance) SettlementPlan {
	creditors := partyHeap{}
	debtors := partyHeap{}
	for _, b := range balances {
		if money.IsSettled(b.Balance) {
			continue
		}
		if b.Balance.IsPositive() {
			creditors = append(creditors, party{memberID: b.MemberID, remaining: b.Balance})
		} else {
			debtors = append(debtors, party{memberID: b.MemberID, remaining: b.Balance.Neg()})
		}
	}
	heap.Init(&creditors)
	heap.Init(&debtors)

	plan := SettlementPlan{Settlements: []Transfer{}, TotalAmount: decimal.Zero}
	for creditors.Len() > 0 && debtors.Len() > 0 {
		cr := heap.Pop(&creditors).(party)
		db := heap.Pop(&debtors).(party)

		amount := cr.remaining
		if db.remaining.LessThan(amount) {
			amount = db.remaining
		}

		plan.Settlements = append(plan.Settlements, Transfer{
			FromMemberID: db.memberID,
			ToMemberID:   cr.memberID,
			Amount:       amount,
		})
		plan.TotalAmount = plan.TotalAmount.Add(amount)

		cr.remaining = cr.remaining.Sub(amount)
		db.remaining = db.remaining.Sub(amount)
		if !money.IsSettled(cr.remaining) {
			heap.Push(&creditors, cr)
		}
		if !money.IsSettled(db.remaining) {
			heap.Push(&debtors, db)
		}
	}

	plan.TotalTransactions = len(plan.Settlements)
	return plan
}
