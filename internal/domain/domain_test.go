package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChallengeMetadata(t *testing.T) {
	tests := []struct {
		name    string
		typ     ChallengeType
		raw     string
		want    ChallengeMetadata
		wantErr bool
	}{
		{name: "category limit", typ: ChallengeCategoryLimit, raw: `{"categoryId":3,"limit":120}`, want: CategoryLimitMetadata{CategoryID: 3, Limit: 120}},
		{name: "importance limit", typ: ChallengeImportanceLimit, raw: `{"importance":"luxury","limit":50}`, want: ImportanceLimitMetadata{Importance: ImportanceLuxury, Limit: 50}},
		{name: "time based without importance", typ: ChallengeTimeBased, raw: `{"days":7}`, want: TimeBasedMetadata{Days: 7}},
		{name: "spending reduction", typ: ChallengeSpendingReduction, raw: `{"baselineAmount":900,"reductionPercent":10}`, want: SpendingReductionMetadata{BaselineAmount: 900, ReductionPercent: 10}},
		{name: "consistency", typ: ChallengeConsistency, raw: `{"dailyLimit":20,"days":14}`, want: ConsistencyMetadata{DailyLimit: 20, Days: 14}},
		{name: "unknown type", typ: "bogus", raw: `{}`, wantErr: true},
		{name: "missing metadata", typ: ChallengeConsistency, raw: ``, wantErr: true},
		{name: "null metadata", typ: ChallengeConsistency, raw: `null`, wantErr: true},
		{name: "malformed json", typ: ChallengeCategoryLimit, raw: `{"categoryId":`, wantErr: true},
		{name: "category limit without category", typ: ChallengeCategoryLimit, raw: `{"limit":10}`, wantErr: true},
		{name: "bad importance", typ: ChallengeImportanceLimit, raw: `{"importance":"meh","limit":10}`, wantErr: true},
		{name: "reduction over 100", typ: ChallengeSpendingReduction, raw: `{"baselineAmount":10,"reductionPercent":150}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChallengeMetadata(tt.typ, []byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMetadata)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChallengeJSONRoundTripsTypedMetadata(t *testing.T) {
	in := Challenge{
		ID:       1,
		Type:     ChallengeCategoryLimit,
		Status:   ChallengeActive,
		Metadata: CategoryLimitMetadata{CategoryID: 2, Limit: 80},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"metadata":{"categoryId":2,"limit":80}`)

	var out Challenge
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Metadata, out.Metadata)
	assert.Equal(t, ChallengeActive, out.Status)
}

func TestChallengeBeforeSaveRejectsMismatchedMetadata(t *testing.T) {
	c := Challenge{Type: ChallengeConsistency, Metadata: CategoryLimitMetadata{CategoryID: 1, Limit: 1}}
	assert.ErrorIs(t, c.BeforeSave(nil), ErrInvalidMetadata)
}

func TestChallengeStatusTerminal(t *testing.T) {
	assert.False(t, ChallengeSuggested.Terminal())
	assert.False(t, ChallengeActive.Terminal())
	assert.True(t, ChallengeCompleted.Terminal())
	assert.True(t, ChallengeFailed.Terminal())
	assert.True(t, ChallengeDismissed.Terminal())
}

func TestPayload(t *testing.T) {
	var p Payload
	v, err := p.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, p.Scan([]byte(`{"a":1}`)))
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	require.NoError(t, p.Scan(`{"b":2}`))
	v, err = p.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, v)

	assert.Error(t, p.Scan(42))
	assert.Error(t, p.UnmarshalJSON([]byte(`{`)))
}

func TestEventNotification(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	n, err := Event{UserID: 4, Type: NotificationChallengeStarted, Title: "t", Message: "m", Data: map[string]any{"challengeId": 9}}.Notification(now)
	require.NoError(t, err)
	assert.Equal(t, uint(4), n.UserID)
	assert.False(t, n.IsRead)
	assert.Equal(t, now, n.CreatedAt)
	assert.JSONEq(t, `{"challengeId":9}`, string(n.Data))

	n, err = Event{UserID: 4, Type: NotificationSystem}.Notification(now)
	require.NoError(t, err)
	assert.Nil(t, n.Data)
}

func TestClampPercentAndSubGoal(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-5))
	assert.Equal(t, 100, ClampPercent(250))
	assert.Equal(t, 42.5, ClampPercent(42.5))

	var s SubGoal
	s.SetProgress(120)
	assert.Equal(t, 100, s.Progress)
	assert.True(t, s.Completed)
	s.SetProgress(30)
	assert.False(t, s.Completed)
}

func TestUserBudgetLimit(t *testing.T) {
	assert.Equal(t, 500.0, User{MonthlyBudget: 500, MonthlySalary: 3000}.BudgetLimit())
	assert.Equal(t, 3000.0, User{MonthlySalary: 3000}.BudgetLimit())
	assert.Equal(t, 0.0, User{}.BudgetLimit())
}

func TestExpenseBeforeSaveDerivesPeriod(t *testing.T) {
	e := Expense{Date: time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)}
	require.NoError(t, e.BeforeSave(nil))
	assert.Equal(t, 2026, e.Year)
	assert.Equal(t, 7, e.Month)
}

func TestExpenseBeforeSaveRoundsAmountToCents(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 10.129, want: 10.13},
		{in: 1.004, want: 1},
		{in: 0.005, want: 0.01},
		{in: 42.5, want: 42.5},
	}
	for _, tt := range tests {
		e := Expense{Amount: tt.in}
		require.NoError(t, e.BeforeSave(nil))
		assert.Equal(t, tt.want, e.Amount, "amount %v", tt.in)
	}
}
