package notify

import (
	"context"                          // Request scoped cancellation
	"finance_tracker/internal/domain"  // Domain models
	"finance_tracker/internal/storage" // Repositories
	"fmt"                              // Messages
	"time"                             // Month boundaries

	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Structured logging
)

// Budget alert thresholds as fractions of the monthly limit
var (
	WarningThreshold  = decimal.RequireFromString("0.8") // 80% of the limit
	ExceededThreshold = decimal.NewFromInt(1)            // The limit itself
)

type userGetter interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type expenseLister interface {
	ListExpenses(ctx context.Context, userID uint, f storage.ExpenseFilter) ([]domain.Expense, error)
}

// BudgetMonitor emits budget notifications when an expense write crosses a threshold
type BudgetMonitor struct {
	users      userGetter
	expenses   expenseLister
	dispatcher *Dispatcher
}

// NewBudgetMonitor builds a BudgetMonitor
func NewBudgetMonitor(users userGetter, expenses expenseLister, dispatcher *Dispatcher) *BudgetMonitor {
	return &BudgetMonitor{users: users, expenses: expenses, dispatcher: dispatcher}
}

// Check compares the month-to-date total of the month containing at against the user's limit.
// delta is how much the triggering write added to that month. Errors are logged only.
func (m *BudgetMonitor) Check(ctx context.Context, userID uint, at time.Time, delta float64) []domain.Event {
	events, err := m.evaluate(ctx, userID, at, delta)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Budget check failed")
		return nil
	}
	m.dispatcher.Dispatch(ctx, events...)
	return events
}

func (m *BudgetMonitor) evaluate(ctx context.Context, userID uint, at time.Time, delta float64) ([]domain.Event, error) {
	if delta <= 0 {
		return nil, nil
	}
	u, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	limit := decimal.NewFromFloat(u.BudgetLimit())
	if !limit.IsPositive() {
		return nil, nil // No budget set
	}
	es, err := m.expenses.ListExpenses(ctx, userID, storage.ExpenseFilter{Month: int(at.Month()), Year: at.Year()})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	total := decimal.Zero
	for _, e := range es {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	previous := total.Sub(decimal.NewFromFloat(delta)) // Month total before this write
	return budgetEvents(userID, at, previous, total, limit), nil
}

// budgetEvents returns at most one event: exceeded wins over warning when both are crossed
func budgetEvents(userID uint, at time.Time, previous, total, limit decimal.Decimal) []domain.Event {
	crossed := func(fraction decimal.Decimal) bool {
		threshold := limit.Mul(fraction)
		return previous.LessThan(threshold) && total.GreaterThanOrEqual(threshold)
	}
	spent, _ := total.Round(2).Float64()
	lim, _ := limit.Round(2).Float64()
	pct, _ := total.Div(limit).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	data := map[string]any{
		"month":   int(at.Month()),
		"year":    at.Year(),
		"spent":   spent,
		"limit":   lim,
		"percent": pct,
	}
	switch {
	case crossed(ExceededThreshold):
		return []domain.Event{{
			UserID:  userID,
			Type:    domain.NotificationBudgetExceeded,
			Title:   "Monthly budget exceeded",
			Message: fmt.Sprintf("You have spent %.2f of your %.2f budget for %s.", spent, lim, at.Format("January 2006")),
			Data:    data,
		}}
	case crossed(WarningThreshold):
		return []domain.Event{{
			UserID:  userID,
			Type:    domain.NotificationBudgetWarning,
			Title:   "Approaching monthly budget",
			Message: fmt.Sprintf("You have used %.1f%% of your budget for %s.", pct, at.Format("January 2006")),
			Data:    data,
		}}
	}
	return nil
}

// GoalCompleted is the event emitted when a savings goal reaches its target
func GoalCompleted(g domain.SavingsGoal) domain.Event {
	return domain.Event{
		UserID:  g.UserID,
		Type:    domain.NotificationGoalCompleted,
		Title:   "Savings goal reached",
		Message: fmt.Sprintf("You reached your savings goal %q.", g.Title),
		Data: map[string]any{
			"goalId":       g.ID,
			"targetAmount": g.TargetAmount,
		},
	}
}
