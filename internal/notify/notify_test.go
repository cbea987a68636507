package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"
	"finance_tracker/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []domain.Notification
	err       error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n domain.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

type failingRepo struct {
	storage.NotificationRepository
}

func (failingRepo) CreateNotifications(context.Context, []domain.Notification) error {
	return errors.New("db down")
}

func newUser(t *testing.T, s *storage.GormStore, name string, budget, salary float64) domain.User {
	t.Helper()
	u := domain.User{Username: name, Password: "x", Email: name + "@example.com", MonthlyBudget: budget, MonthlySalary: salary}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func TestDispatchPersistsAndPublishes(t *testing.T) {
	s := storagetest.NewStore(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(s, pub)
	ctx := context.Background()
	u := newUser(t, s, "amy", 0, 0)

	ns := d.Dispatch(ctx,
		domain.Event{UserID: u.ID, Type: domain.NotificationChallengeStarted, Title: "a", Message: "m", Data: map[string]any{"challengeId": 1}},
		domain.Event{UserID: u.ID, Type: domain.NotificationSystem, Title: "b", Message: "m"},
	)
	require.Len(t, ns, 2)
	assert.NotZero(t, ns[0].ID)
	assert.Len(t, pub.published, 2)

	count, err := s.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.Nil(t, d.Dispatch(ctx))
}

func TestDispatchSwallowsStorageFailure(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(failingRepo{}, pub)
	ns := d.Dispatch(context.Background(), domain.Event{UserID: 1, Type: domain.NotificationSystem})
	assert.Nil(t, ns)
	assert.Empty(t, pub.published)
}

func TestServiceReadState(t *testing.T) {
	s := storagetest.NewStore(t)
	svc := NewService(s, NewDispatcher(s, nil))
	ctx := context.Background()
	owner := newUser(t, s, "ben", 0, 0)
	other := newUser(t, s, "cat", 0, 0)

	n, ok := svc.Create(ctx, owner.ID, domain.NotificationSystem, "Welcome", "hello", nil)
	require.True(t, ok)
	assert.False(t, n.IsRead)
	_, ok = svc.Create(ctx, owner.ID, domain.NotificationSystem, "Second", "again", map[string]any{"k": "v"})
	require.True(t, ok)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, other.ID, n.ID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, owner.ID, 999), storage.ErrNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, owner.ID, n.ID))
	require.NoError(t, svc.MarkAsRead(ctx, owner.ID, n.ID))
	count, err := svc.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.MarkAllAsRead(ctx, owner.ID))
	require.NoError(t, svc.MarkAllAsRead(ctx, owner.ID))
	count, err = svc.CountUnread(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	list, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	list, err = svc.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBudgetMonitorEmitsOnlyOnCrossing(t *testing.T) {
	s := storagetest.NewStore(t)
	d := NewDispatcher(s, nil)
	m := NewBudgetMonitor(s, s, d)
	ctx := context.Background()
	u := newUser(t, s, "dora", 1000, 0)
	at := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	add := func(amount float64) []domain.Event {
		e := domain.Expense{Title: "x", Amount: amount, CategoryID: 1, UserID: u.ID, Importance: domain.ImportanceNormal, Date: at}
		require.NoError(t, s.CreateExpense(ctx, &e))
		return m.Check(ctx, u.ID, at, amount)
	}

	assert.Empty(t, add(500))
	events := add(300)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationBudgetWarning, events[0].Type)
	assert.Empty(t, add(100))
	events = add(150)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationBudgetExceeded, events[0].Type)
	assert.Equal(t, 1050.0, events[0].Data["spent"])
	assert.Empty(t, add(10))

	list, err := s.ListNotifications(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBudgetMonitorEdgeCases(t *testing.T) {
	s := storagetest.NewStore(t)
	m := NewBudgetMonitor(s, s, NewDispatcher(s, nil))
	ctx := context.Background()
	at := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	noLimit := newUser(t, s, "eve", 0, 0)
	assert.Empty(t, m.Check(ctx, noLimit.ID, at, 50))

	assert.Empty(t, m.Check(ctx, 12345, at, 50))

	salaryOnly := newUser(t, s, "finn", 0, 100)
	e := domain.Expense{Title: "big", Amount: 120, CategoryID: 1, UserID: salaryOnly.ID, Importance: domain.ImportanceLuxury, Date: at}
	require.NoError(t, s.CreateExpense(ctx, &e))
	events := m.Check(ctx, salaryOnly.ID, at, 120)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationBudgetExceeded, events[0].Type)

	assert.Empty(t, m.Check(ctx, salaryOnly.ID, at, -20))
}

func TestGoalCompleted(t *testing.T) {
	e := GoalCompleted(domain.SavingsGoal{ID: 3, UserID: 9, Title: "Trip", TargetAmount: 800})
	assert.Equal(t, uint(9), e.UserID)
	assert.Equal(t, domain.NotificationGoalCompleted, e.Type)
	assert.Contains(t, e.Message, "Trip")
	assert.Equal(t, uint(3), e.Data["goalId"])
}
