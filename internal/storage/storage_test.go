package storage_test

import (
	"context"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"
	"finance_tracker/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, s *storage.GormStore, name string) domain.User {
	t.Helper()
	u := domain.User{Username: name, Password: "hash", Email: name + "@example.com"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func TestUsers(t *testing.T) {
	s := storagetest.NewStore(t)
	ctx := context.Background()

	u := domain.User{Username: "Alice", Password: "hash", Email: "Alice@Example.com"}
	require.NoError(t, s.CreateUser(ctx, &u))
	assert.NotZero(t, u.ID)

	got, err := s.GetUserByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)

	dup := domain.User{Username: "alice", Password: "x", Email: "other@example.com"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), storage.ErrDuplicate)

	got.MonthlySalary = 3200
	require.NoError(t, s.UpdateUser(ctx, &got))
	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3200.0, again.MonthlySalary)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCategoriesSeeded(t *testing.T) {
	s := storagetest.NewStore(t)
	ctx := context.Background()

	cs, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cs, len(domain.DefaultCategories))
	assert.Equal(t, uint(1), cs[0].ID)

	c := domain.Category{Name: "Pets", Icon: "🐶", Color: "#000000"}
	require.NoError(t, s.CreateCategory(ctx, &c))
	dup := domain.Category{Name: "Pets"}
	assert.ErrorIs(t, s.CreateCategory(ctx, &dup), storage.ErrDuplicate)
}

func TestExpensesUseMonthYearIndex(t *testing.T) {
	s := storagetest.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "bob")
	other := newUser(t, s, "carol")

	for _, e := range []domain.Expense{
		{Title: "rent", Amount: 900, CategoryID: 3, UserID: u.ID, Importance: domain.ImportanceImportant, Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "movie", Amount: 15, CategoryID: 6, UserID: u.ID, Importance: domain.ImportanceLuxury, Date: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)},
		{Title: "bus", Amount: 2, CategoryID: 2, UserID: u.ID, Importance: domain.ImportanceNormal, Date: time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "theirs", Amount: 7, CategoryID: 1, UserID: other.ID, Importance: domain.ImportanceNormal, Date: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)},
	} {
		require.NoError(t, s.CreateExpense(ctx, &e))
	}

	all, err := s.ListExpenses(ctx, u.ID, storage.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bus", all[0].Title)

	may, err := s.ListExpenses(ctx, u.ID, storage.ExpenseFilter{Month: 5, Year: 2026})
	require.NoError(t, err)
	assert.Len(t, may, 2)

	between, err := s.ListExpensesBetween(ctx, u.ID, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "movie", between[0].Title)

	moved := all[0]
	moved.Date = time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateExpense(ctx, &moved))
	may, err = s.ListExpenses(ctx, u.ID, storage.ExpenseFilter{Month: 5, Year: 2026})
	require.NoError(t, err)
	assert.Len(t, may, 3)

	require.NoError(t, s.DeleteExpense(ctx, moved.ID))
	assert.ErrorIs(t, s.DeleteExpense(ctx, moved.ID), storage.ErrNotFound)
	_, err = s.GetExpense(ctx, moved.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSavingsGoals(t *testing.T) {
	s := storagetest.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "dave")

	g := domain.SavingsGoal{Title: "bike", TargetAmount: 500, UserID: u.ID, SubGoals: []domain.SubGoal{{Title: "research"}}}
	require.NoError(t, s.CreateSavingsGoal(ctx, &g))

	sg := domain.SubGoal{Title: "buy lock", GoalID: g.ID}
	require.NoError(t, s.CreateSubGoal(ctx, &sg))
	sg.SetProgress(100)
	require.NoError(t, s.UpdateSubGoal(ctx, &sg))

	got, err := s.GetSavingsGoal(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.SubGoals, 2)
	assert.Equal(t, "research", got.SubGoals[0].Title)
	assert.True(t, got.SubGoals[1].Completed)

	got.CurrentAmount = 120
	require.NoError(t, s.UpdateSavingsGoal(ctx, &got))
	list, err := s.ListSavingsGoals(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 120.0, list[0].CurrentAmount)
	assert.Len(t, list[0].SubGoals, 2)

	_, err = s.GetSubGoal(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNotifications(t *testing.T) {
	s := storagetest.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "erin")
	now := time.Now().UTC()

	ns := []domain.Notification{
		{UserID: u.ID, Type: domain.NotificationSystem, Title: "a", Message: "first", CreatedAt: now.Add(-time.Minute)},
		{UserID: u.ID, Type: domain.NotificationBudgetWarning, Title: "b", Message: "second", CreatedAt: now, Data: domain.Payload(`{"percent":80}`)},
	}
	require.NoError(t, s.CreateNotifications(ctx, ns))
	require.NoError(t, s.CreateNotifications(ctx, nil))
	assert.NotZero(t, ns[0].ID)

	list, err := s.ListNotifications(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Title)
	assert.JSONEq(t, `{"percent":80}`, string(list[0].Data))

	count, err := s.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, s.MarkRead(ctx, ns[0].ID))
	require.NoError(t, s.MarkRead(ctx, ns[0].ID))
	count, err = s.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, s.MarkAllRead(ctx, u.ID))
	require.NoError(t, s.MarkAllRead(ctx, u.ID))
	count, err = s.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChallengesPersistTypedMetadata(t *testing.T) {
	s := storagetest.NewStore(t)
	ctx := context.Background()
	u := newUser(t, s, "frank")
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	cs := []domain.Challenge{
		{UserID: u.ID, Title: "limit food", Type: domain.ChallengeCategoryLimit, Status: domain.ChallengeActive,
			StartDate: now.AddDate(0, 0, -40), EndDate: now.AddDate(0, 0, -10), UpdatedAt: now,
			Metadata: domain.CategoryLimitMetadata{CategoryID: 1, Limit: 100}},
		{UserID: u.ID, Title: "no luxury", Type: domain.ChallengeTimeBased, Status: domain.ChallengeSuggested,
			StartDate: now, EndDate: now.AddDate(0, 0, 7), UpdatedAt: now,
			Metadata: domain.TimeBasedMetadata{Days: 7, Importance: domain.ImportanceLuxury}},
	}
	require.NoError(t, s.CreateChallenges(ctx, cs))

	got, err := s.GetChallenge(ctx, cs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryLimitMetadata{CategoryID: 1, Limit: 100}, got.Metadata)

	suggested, err := s.ListChallenges(ctx, u.ID, domain.ChallengeSuggested)
	require.NoError(t, err)
	require.Len(t, suggested, 1)
	assert.Equal(t, domain.TimeBasedMetadata{Days: 7, Importance: domain.ImportanceLuxury}, suggested[0].Metadata)

	all, err := s.ListChallenges(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	expired, err := s.ListExpiredChallenges(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, cs[0].ID, expired[0].ID)

	stale := got
	stale.Status = domain.ChallengeCompleted
	assert.ErrorIs(t, s.UpdateChallenge(ctx, &stale, domain.ChallengeSuggested), storage.ErrStale)

	got.Status = domain.ChallengeFailed
	got.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, s.UpdateChallenge(ctx, &got, domain.ChallengeActive))
	assert.ErrorIs(t, s.UpdateChallenge(ctx, &stale, domain.ChallengeActive), storage.ErrStale)

	missing := stale
	missing.ID = 99999
	assert.ErrorIs(t, s.UpdateChallenge(ctx, &missing, domain.ChallengeActive), storage.ErrNotFound)

	expired, err = s.ListExpiredChallenges(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, expired)

	reloaded, err := s.GetChallenge(ctx, got.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.UpdatedAt.Equal(now.Add(time.Hour)))
}
