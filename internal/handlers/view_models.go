package handlers

import (
	"time"

	"tripledger/internal/models"
	"tripledger/internal/money"
)

// View types shape the JSON responses. Amounts render as fixed-point
// strings so clients never see float artifacts.

type tripView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ShareCode string    `json:"shareCode"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func tripViewOf(t *models.Trip) tripView {
	return tripView{
		ID:        t.ID,
		Name:      t.Name,
		ShareCode: t.ShareCode,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func tripViewsOf(trips []models.Trip) []tripView {
	views := make([]tripView, 0, len(trips))
	for i := range trips {
		views = append(views, tripViewOf(&trips[i]))
	}
	return views
}

type memberView struct {
	ID           int64  `json:"id"`
	TripID       int64  `json:"tripId"`
	UserID       *int64 `json:"userId,omitempty"`
	IsVirtual    bool   `json:"isVirtual"`
	DisplayName  string `json:"displayName,omitempty"`
	Role         string `json:"role"`
	Contribution string `json:"contribution"`
}

func memberViewOf(m *models.TripMember) memberView {
	return memberView{
		ID:           m.ID,
		TripID:       m.TripID,
		UserID:       m.UserID,
		IsVirtual:    m.IsVirtual,
		DisplayName:  m.Name(),
		Role:         m.Role,
		Contribution: money.Format(m.Contribution),
	}
}

func memberViewsOf(members []models.TripMember) []memberView {
	views := make([]memberView, 0, len(members))
	for i := range members {
		views = append(views, memberViewOf(&members[i]))
	}
	return views
}

type participantView struct {
	MemberID    int64  `json:"memberId"`
	ShareAmount string `json:"shareAmount"`
}

type expenseView struct {
	ID             int64             `json:"id"`
	TripID         int64             `json:"tripId"`
	Description    string            `json:"description"`
	Amount         string            `json:"amount"`
	IsIncome       bool              `json:"isIncome"`
	PayerMemberID  int64             `json:"payerMemberId"`
	IsPaidFromFund bool              `json:"isPaidFromFund"`
	CreatedBy      int64             `json:"createdBy"`
	CreatedAt      time.Time         `json:"createdAt"`
	Participants   []participantView `json:"participants"`
}

func expenseViewOf(e *models.Expense) expenseView {
	v := expenseView{
		ID:             e.ID,
		TripID:         e.TripID,
		Description:    e.Description,
		Amount:         money.Format(e.Amount),
		IsIncome:       e.IsIncome,
		PayerMemberID:  e.PayerMemberID,
		IsPaidFromFund: e.IsPaidFromFund,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
		Participants:   make([]participantView, 0, len(e.Participants)),
	}
	for _, p := range e.Participants {
		v.Participants = append(v.Participants, participantView{
			MemberID:    p.TripMemberID,
			ShareAmount: money.Format(p.ShareAmount),
		})
	}
	return v
}

func expenseViewsOf(expenses []models.Expense) []expenseView {
	views := make([]expenseView, 0, len(expenses))
	for i := range expenses {
		views = append(views, expenseViewOf(&expenses[i]))
	}
	return views
}

type invitationView struct {
	ID             int64      `json:"id"`
	TripID         int64      `json:"tripId"`
	InvitedUserID  int64      `json:"invitedUserId"`
	InviteType     string     `json:"inviteType"`
	TargetMemberID *int64     `json:"targetMemberId,omitempty"`
	Status         string     `json:"status"`
	Message        string     `json:"message,omitempty"`
	CreatedBy      int64      `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	RespondedAt    *time.Time `json:"respondedAt,omitempty"`
}

func invitationViewOf(inv *models.TripInvitation) invitationView {
	return invitationView{
		ID:             inv.ID,
		TripID:         inv.TripID,
		InvitedUserID:  inv.InvitedUserID,
		InviteType:     inv.InviteType,
		TargetMemberID: inv.TargetMemberID,
		Status:         inv.Status,
		Message:        inv.Message,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		ExpiresAt:      inv.ExpiresAt,
		RespondedAt:    inv.RespondedAt,
	}
}

func invitationViewsOf(invitations []models.TripInvitation) []invitationView {
	views := make([]invitationView, 0, len(invitations))
	for i := range invitations {
		views = append(views, invitationViewOf(&invitations[i]))
	}
	return views
}
