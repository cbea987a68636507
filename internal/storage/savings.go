package storage

import (
	"context"                         // Request scoped cancellation
	"finance_tracker/internal/domain" // Domain models

	"gorm.io/gorm"        // ORM
	"gorm.io/gorm/clause" // Upsert and locking clauses
)

// CreateSavingsGoal inserts the goal together with any sub-goals it carries
func (s *GormStore) CreateSavingsGoal(ctx context.Context, g *domain.SavingsGoal) error {
	return translate(s.db.WithContext(ctx).Create(g).Error)
}

func (s *GormStore) GetSavingsGoal(ctx context.Context, id uint) (domain.SavingsGoal, error) {
	var g domain.SavingsGoal
	err := s.db.WithContext(ctx).Preload("SubGoals", orderByID).First(&g, id).Error
	return g, translate(err)
}

func (s *GormStore) ListSavingsGoals(ctx context.Context, userID uint) ([]domain.SavingsGoal, error) {
	var gs []domain.SavingsGoal
	err := s.db.WithContext(ctx).
		Preload("SubGoals", orderByID).
		Where("user_id = ?", userID).
		Order("id").
		Find(&gs).Error
	return gs, translate(err)
}

// UpdateSavingsGoal saves the goal row only; sub-goals are written through their own calls
func (s *GormStore) UpdateSavingsGoal(ctx context.Context, g *domain.SavingsGoal) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(g).Error)
}

func (s *GormStore) CreateSubGoal(ctx context.Context, sg *domain.SubGoal) error {
	return translate(s.db.WithContext(ctx).Create(sg).Error)
}

func (s *GormStore) GetSubGoal(ctx context.Context, id uint) (domain.SubGoal, error) {
	var sg domain.SubGoal
	err := s.db.WithContext(ctx).First(&sg, id).Error
	return sg, translate(err)
}

func (s *GormStore) UpdateSubGoal(ctx context.Context, sg *domain.SubGoal) error {
	return translate(s.db.WithContext(ctx).Save(sg).Error)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
