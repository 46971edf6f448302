package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tripledger/internal/models"
	"tripledger/internal/repository"
)

// memState is an in-memory stand-in for the database shared by the
// fake stores below.
type memState struct {
	nextID      int64
	users       map[int64]*models.User
	trips       map[int64]*models.Trip
	members     map[int64]*models.TripMember
	invitations map[int64]*models.TripInvitation
	expenses    map[int64]*models.Expense
}

func newMemState() *memState {
	return &memState{
		users:       make(map[int64]*models.User),
		trips:       make(map[int64]*models.Trip),
		members:     make(map[int64]*models.TripMember),
		invitations: make(map[int64]*models.TripInvitation),
		expenses:    make(map[int64]*models.Expense),
	}
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memState) addUser(email, name string) *models.User {
	u := &models.User{ID: s.id(), Email: email, Name: name}
	s.users[u.ID] = u
	return u
}

func (s *memState) addTrip(name string, createdBy int64) *models.Trip {
	t := &models.Trip{ID: s.id(), Name: name, CreatedBy: createdBy}
	s.trips[t.ID] = t
	return t
}

func (s *memState) addMember(tripID int64, userID *int64, role string, virtual bool) *models.TripMember {
	m := &models.TripMember{
		ID:       s.id(),
		TripID:   tripID,
		UserID:   userID,
		Role:     role,
		IsActive: true,
	}
	if virtual {
		m.IsVirtual = true
		name := "placeholder"
		m.DisplayName = &name
	}
	s.members[m.ID] = m
	return m
}

func (s *memState) isActiveMember(tripID, userID int64) bool {
	for _, m := range s.members {
		if m.TripID == tripID && m.IsActive && m.IsLinkedTo(userID) {
			return true
		}
	}
	return false
}

// fakeUserStore

type fakeUserStore struct{ state *memState }

var _ repository.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = f.state.id()
	f.state.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) ByID(_ context.Context, id int64) (*models.User, error) {
	return f.state.users[id], nil
}

func (f *fakeUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.state.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) ByOAuthSubject(_ context.Context, subject string) (*models.User, error) {
	for _, u := range f.state.users {
		if u.OAuthSubject != nil && *u.OAuthSubject == subject {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) EmailsByIDs(_ context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string)
	for _, id := range ids {
		if u, ok := f.state.users[id]; ok {
			out[id] = u.Email
		}
	}
	return out, nil
}

// fakeTripStore

type fakeTripStore struct{ state *memState }

var _ repository.TripStore = (*fakeTripStore)(nil)

func (f *fakeTripStore) Create(_ context.Context, trip *models.Trip, owner *models.TripMember) error {
	trip.ID = f.state.id()
	f.state.trips[trip.ID] = trip
	owner.ID = f.state.id()
	owner.TripID = trip.ID
	owner.IsActive = true
	f.state.members[owner.ID] = owner
	return nil
}

func (f *fakeTripStore) ByID(_ context.Context, id int64) (*models.Trip, error) {
	return f.state.trips[id], nil
}

func (f *fakeTripStore) ForUser(_ context.Context, userID int64) ([]models.Trip, error) {
	var trips []models.Trip
	for _, t := range f.state.trips {
		if f.state.isActiveMember(t.ID, userID) {
			trips = append(trips, *t)
		}
	}
	return trips, nil
}

// fakeMemberStore

type fakeMemberStore struct{ state *memState }

var (
	_ repository.MembershipStore = (*fakeMemberStore)(nil)
	_ repository.MembershipTx    = (*fakeMemberStore)(nil)
)

func (f *fakeMemberStore) ActiveMembers(_ context.Context, tripID int64) ([]models.TripMember, error) {
	var members []models.TripMember
	for _, m := range f.state.members {
		if m.TripID == tripID && m.IsActive {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (f *fakeMemberStore) ByID(_ context.Context, memberID int64) (*models.TripMember, error) {
	if m, ok := f.state.members[memberID]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (f *fakeMemberStore) ActiveMemberOf(_ context.Context, tripID, userID int64) (*models.TripMember, error) {
	for _, m := range f.state.members {
		if m.TripID == tripID && m.IsActive && m.IsLinkedTo(userID) {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberStore) IsActiveMember(_ context.Context, tripID, userID int64) (bool, error) {
	return f.state.isActiveMember(tripID, userID), nil
}

func (f *fakeMemberStore) AddVirtual(_ context.Context, member *models.TripMember) error {
	member.ID = f.state.id()
	member.IsVirtual = true
	member.IsActive = true
	member.Role = models.RoleMember
	f.state.members[member.ID] = member
	return nil
}

func (f *fakeMemberStore) InTx(ctx context.Context, fn func(tx repository.MembershipTx) error) error {
	err := fn(f)
	if inner, commit := repository.CommitRequested(err); commit {
		return inner
	}
	return err
}

func (f *fakeMemberStore) MemberForUpdate(ctx context.Context, memberID int64) (*models.TripMember, error) {
	return f.ByID(ctx, memberID)
}

func (f *fakeMemberStore) CountActiveAdmins(_ context.Context, tripID int64) (int, error) {
	count := 0
	for _, m := range f.state.members {
		if m.TripID == tripID && m.IsActive && m.Role == models.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func (f *fakeMemberStore) SetRole(_ context.Context, memberID int64, role string) error {
	f.state.members[memberID].Role = role
	return nil
}

func (f *fakeMemberStore) Deactivate(_ context.Context, memberID int64) error {
	f.state.members[memberID].IsActive = false
	return nil
}

func (f *fakeMemberStore) SetContribution(_ context.Context, memberID int64, amount decimal.Decimal) error {
	f.state.members[memberID].Contribution = amount
	return nil
}

// fakeInvitationStore

type fakeInvitationStore struct{ state *memState }

var (
	_ repository.InvitationStore = (*fakeInvitationStore)(nil)
	_ repository.InvitationTx    = (*fakeInvitationStore)(nil)
)

func (f *fakeInvitationStore) Create(_ context.Context, inv *models.TripInvitation) error {
	inv.ID = f.state.id()
	inv.CreatedAt = time.Now()
	f.state.invitations[inv.ID] = inv
	return nil
}

func (f *fakeInvitationStore) ByID(_ context.Context, id int64) (*models.TripInvitation, error) {
	if inv, ok := f.state.invitations[id]; ok {
		c := *inv
		return &c, nil
	}
	return nil, nil
}

func (f *fakeInvitationStore) HasPending(_ context.Context, tripID, userID int64) (bool, error) {
	for _, inv := range f.state.invitations {
		if inv.TripID == tripID && inv.InvitedUserID == userID && inv.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationStore) ForUser(_ context.Context, userID int64) ([]models.TripInvitation, error) {
	var out []models.TripInvitation
	for _, inv := range f.state.invitations {
		if inv.InvitedUserID == userID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationStore) ForTrip(_ context.Context, tripID int64) ([]models.TripInvitation, error) {
	var out []models.TripInvitation
	for _, inv := range f.state.invitations {
		if inv.TripID == tripID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationStore) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, inv := range f.state.invitations {
		if inv.IsPending() && inv.IsExpired(now) {
			inv.Status = models.InviteStatusExpired
			count++
		}
	}
	return count, nil
}

func (f *fakeInvitationStore) InTx(ctx context.Context, fn func(tx repository.InvitationTx) error) error {
	err := fn(f)
	if inner, commit := repository.CommitRequested(err); commit {
		return inner
	}
	return err
}

func (f *fakeInvitationStore) InvitationForUpdate(ctx context.Context, id int64) (*models.TripInvitation, error) {
	return f.ByID(ctx, id)
}

func (f *fakeInvitationStore) SetStatus(_ context.Context, id int64, status string, respondedAt *time.Time) error {
	inv := f.state.invitations[id]
	inv.Status = status
	inv.RespondedAt = respondedAt
	return nil
}

func (f *fakeInvitationStore) IsActiveMember(_ context.Context, tripID, userID int64) (bool, error) {
	return f.state.isActiveMember(tripID, userID), nil
}

func (f *fakeInvitationStore) MemberForUpdate(_ context.Context, memberID int64) (*models.TripMember, error) {
	if m, ok := f.state.members[memberID]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (f *fakeInvitationStore) PromoteVirtual(_ context.Context, memberID, userID int64) error {
	m := f.state.members[memberID]
	m.UserID = &userID
	m.IsVirtual = false
	m.DisplayName = nil
	return nil
}

func (f *fakeInvitationStore) InsertMember(_ context.Context, member *models.TripMember) error {
	member.ID = f.state.id()
	member.IsActive = true
	f.state.members[member.ID] = member
	return nil
}

// fakeExpenseStore

type fakeExpenseStore struct{ state *memState }

var _ repository.ExpenseStore = (*fakeExpenseStore)(nil)

func (f *fakeExpenseStore) Create(_ context.Context, expense *models.Expense) error {
	expense.ID = f.state.id()
	expense.CreatedAt = time.Now()
	f.state.expenses[expense.ID] = expense
	return nil
}

func (f *fakeExpenseStore) ByID(_ context.Context, id int64) (*models.Expense, error) {
	if e, ok := f.state.expenses[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, nil
}

func (f *fakeExpenseStore) ForTrip(_ context.Context, tripID int64) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.state.expenses {
		if e.TripID == tripID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) Delete(_ context.Context, id int64) error {
	delete(f.state.expenses, id)
	return nil
}
