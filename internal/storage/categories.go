package storage

import (
	"context"                         // Request scoped cancellation
	"finance_tracker/internal/domain" // Domain models
)

func (s *GormStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cs []domain.Category
	err := s.db.WithContext(ctx).Order("id").Find(&cs).Error // Defaults come first
	return cs, translate(err)
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (domain.Category, error) {
	var c domain.Category
	err := s.db.WithContext(ctx).First(&c, id).Error
	return c, translate(err)
}

func (s *GormStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}
