package summary

import (
	"context"                          // Request scoped cancellation
	"finance_tracker/internal/domain"  // Domain models
	"finance_tracker/internal/storage" // Repositories
	"fmt"                              // Error wrapping
	"time"                             // Month windows

	"golang.org/x/sync/errgroup" // Concurrent loads
)

// Period selects the expenses to summarize. Month/Year go through the stored index,
// From/To are applied afterwards in memory.
type Period struct {
	Month int       // 1-12, 0 for any
	Year  int       // 0 for any
	From  time.Time // Zero means open
	To    time.Time // Whole day when it has no time part
}

// ExpenseLister is the slice of storage the service reads expenses through
type ExpenseLister interface {
	ListExpenses(ctx context.Context, userID uint, f storage.ExpenseFilter) ([]domain.Expense, error)
}

// CategoryLister is the slice of storage the service reads categories through
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Service summarizes a user's expenses for a period
type Service struct {
	expenses   ExpenseLister
	categories CategoryLister
}

// NewService builds a Service reading from the given repositories
func NewService(expenses ExpenseLister, categories CategoryLister) *Service {
	return &Service{expenses: expenses, categories: categories}
}

// Expenses returns the user's expenses for the period
func (s *Service) Expenses(ctx context.Context, userID uint, p Period) ([]domain.Expense, error) {
	es, err := s.expenses.ListExpenses(ctx, userID, storage.ExpenseFilter{Month: p.Month, Year: p.Year})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return FilterByRange(es, p.From, p.To), nil
}

// ForPeriod fetches expenses and categories concurrently and summarizes them
func (s *Service) ForPeriod(ctx context.Context, userID uint, p Period) (Summary, error) {
	var (
		expenses   []domain.Expense
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx) // First failure cancels the other load
	g.Go(func() error {
		var err error
		expenses, err = s.Expenses(gctx, userID, p)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Summarize(expenses, categories), nil
}
