package storage

import (
	"context"                         // Request scoped cancellation
	"finance_tracker/internal/domain" // Domain models
	"time"                            // Date ranges

	"gorm.io/gorm/clause" // Upsert and locking clauses
)

func (s *GormStore) CreateExpense(ctx context.Context, e *domain.Expense) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (s *GormStore) GetExpense(ctx context.Context, id uint) (domain.Expense, error) {
	var e domain.Expense
	err := s.db.WithContext(ctx).First(&e, id).Error
	return e, translate(err)
}

// ListExpenses returns the user's expenses, newest first, narrowed by the month/year index
func (s *GormStore) ListExpenses(ctx context.Context, userID uint, f ExpenseFilter) ([]domain.Expense, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Month != 0 {
		q = q.Where("month = ?", f.Month)
	}
	var es []domain.Expense
	err := q.Order("date desc, id desc").Find(&es).Error
	return es, translate(err)
}

// ListExpensesBetween returns expenses with from <= date < to
func (s *GormStore) ListExpensesBetween(ctx context.Context, userID uint, from, to time.Time) ([]domain.Expense, error) {
	var es []domain.Expense
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date desc, id desc").
		Find(&es).Error
	return es, translate(err)
}

func (s *GormStore) UpdateExpense(ctx context.Context, e *domain.Expense) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error)
}

func (s *GormStore) DeleteExpense(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Expense{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
