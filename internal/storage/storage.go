// Package storage is the persistence adapter: repository interfaces per entity and a
// gorm-backed implementation. It holds no business rules.
package storage

import (
	"context"                         // Request scoped cancellation
	"errors"                          // Sentinel errors
	"finance_tracker/internal/domain" // Domain models
	"strings"                         // Driver error matching
	"time"                            // Dates and windows

	"gorm.io/gorm" // ORM
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("record already exists")
	// ErrStale is returned when a conditional update finds the row already changed
	ErrStale = errors.New("record was changed concurrently")
)

// ExpenseFilter narrows expense lookups through the month/year index
type ExpenseFilter struct {
	Month int // 1-12, 0 means any
	Year  int // 0 means any
}

// UserRepository gives access to users
type UserRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id uint) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
}

// CategoryRepository gives access to categories
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id uint) (domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
}

// ExpenseRepository gives access to expenses
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, e *domain.Expense) error
	GetExpense(ctx context.Context, id uint) (domain.Expense, error)
	ListExpenses(ctx context.Context, userID uint, f ExpenseFilter) ([]domain.Expense, error)
	ListExpensesBetween(ctx context.Context, userID uint, from, to time.Time) ([]domain.Expense, error)
	UpdateExpense(ctx context.Context, e *domain.Expense) error
	DeleteExpense(ctx context.Context, id uint) error
}

// SavingsGoalRepository gives access to savings goals and their sub-goals
type SavingsGoalRepository interface {
	CreateSavingsGoal(ctx context.Context, g *domain.SavingsGoal) error
	GetSavingsGoal(ctx context.Context, id uint) (domain.SavingsGoal, error)
	ListSavingsGoals(ctx context.Context, userID uint) ([]domain.SavingsGoal, error)
	UpdateSavingsGoal(ctx context.Context, g *domain.SavingsGoal) error
	CreateSubGoal(ctx context.Context, s *domain.SubGoal) error
	GetSubGoal(ctx context.Context, id uint) (domain.SubGoal, error)
	UpdateSubGoal(ctx context.Context, s *domain.SubGoal) error
}

// NotificationRepository gives access to notifications
type NotificationRepository interface {
	CreateNotifications(ctx context.Context, ns []domain.Notification) error
	GetNotification(ctx context.Context, id uint) (domain.Notification, error)
	ListNotifications(ctx context.Context, userID uint) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

// ChallengeRepository gives access to challenges
type ChallengeRepository interface {
	CreateChallenges(ctx context.Context, cs []domain.Challenge) error
	GetChallenge(ctx context.Context, id uint) (domain.Challenge, error)
	ListChallenges(ctx context.Context, userID uint, statuses ...domain.ChallengeStatus) ([]domain.Challenge, error)
	ListExpiredChallenges(ctx context.Context, now time.Time) ([]domain.Challenge, error)
	UpdateChallenge(ctx context.Context, c *domain.Challenge, from domain.ChallengeStatus) error
}

// Store is the full persistence surface
type Store interface {
	UserRepository
	CategoryRepository
	ExpenseRepository
	SavingsGoalRepository
	NotificationRepository
	ChallengeRepository
}

// GormStore implements Store on top of gorm
type GormStore struct {
	db *gorm.DB // Opened with TranslateError
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection for migrations and health checks
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err):
		return ErrDuplicate
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") || strings.Contains(s, "unique constraint")
}

// Ping checks that the database answers
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
